package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/gpay-transactions/config"
	"github.com/yourusername/gpay-transactions/middleware"
	"github.com/yourusername/gpay-transactions/models"
	"github.com/yourusername/gpay-transactions/services"
)

type TransferHandler struct {
	transfers *services.TransferService
	config    *config.Config
}

func NewTransferHandler(transfers *services.TransferService, cfg *config.Config) *TransferHandler {
	return &TransferHandler{transfers: transfers, config: cfg}
}

type CreateTransferRequest struct {
	ID          string          `json:"id" binding:"required,max=64"`
	Channel     string          `json:"channel" binding:"required,channel"`
	OrderID     string          `json:"order_id" binding:"required,max=64"`
	Amount      int64           `json:"amount" binding:"required,gt=0"`
	Currency    string          `json:"currency" binding:"required,currency"`
	RecipientID string          `json:"recipient_id" binding:"required,max=64"`
	Description string          `json:"description" binding:"max=255"`
	Metadata    json.RawMessage `json:"metadata"`
	Extra       json.RawMessage `json:"extra"`
}

type EnvelopeRequest struct {
	SourceAccount string `json:"source_account"`
}

func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transfer := models.Transfer{
		ID:          req.ID,
		AppID:       c.GetString(middleware.AppIDKey),
		Channel:     req.Channel,
		OrderID:     req.OrderID,
		Amount:      models.Amount(req.Amount),
		Currency:    req.Currency,
		RecipientID: req.RecipientID,
		Description: req.Description,
		Metadata:    jsonBlob(req.Metadata),
		Extra:       jsonBlob(req.Extra),
	}

	if err := h.transfers.Create(c.Request.Context(), &transfer); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transfer)
}

func (h *TransferHandler) GetTransfer(c *gin.Context) {
	transfer, ok := h.ownTransfer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, transfer)
}

func (h *TransferHandler) SetFailure(c *gin.Context) {
	var req FailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.ownTransfer(c); !ok {
		return
	}

	transfer, err := h.transfers.SetFailure(c.Request.Context(), c.Param("id"), req.FailureCode, req.FailureMsg)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, transfer)
}

// BuildEnvelope returns an unsigned payout envelope for the transfer. The
// source account defaults to the configured payout account.
func (h *TransferHandler) BuildEnvelope(c *gin.Context) {
	var req EnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.ownTransfer(c); !ok {
		return
	}

	source := req.SourceAccount
	if source == "" {
		source = h.config.PayoutAccount
	}
	if source == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_account is required"})
		return
	}

	envelope, err := h.transfers.PayoutEnvelope(c.Request.Context(), c.Param("id"), source)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transfer_id": c.Param("id"),
		"tx_envelope": envelope,
		"message":     "Sign and submit the envelope to disburse the transfer.",
	})
}

func (h *TransferHandler) ownTransfer(c *gin.Context) (*models.Transfer, bool) {
	transfer, err := h.transfers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if transfer.AppID != c.GetString(middleware.AppIDKey) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return nil, false
	}
	return transfer, true
}
