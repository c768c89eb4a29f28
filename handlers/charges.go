package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/gpay-transactions/middleware"
	"github.com/yourusername/gpay-transactions/models"
	"github.com/yourusername/gpay-transactions/services"
	"gorm.io/datatypes"
)

type ChargeHandler struct {
	charges *services.ChargeService
}

func NewChargeHandler(charges *services.ChargeService) *ChargeHandler {
	return &ChargeHandler{charges: charges}
}

type CreateChargeRequest struct {
	ID          string          `json:"id" binding:"required,max=64"`
	Channel     string          `json:"channel" binding:"required,channel"`
	Type        string          `json:"type"`
	OrderID     string          `json:"order_id" binding:"required,max=64"`
	Amount      int64           `json:"amount" binding:"required,gt=0"`
	Currency    string          `json:"currency" binding:"required,currency"`
	Subject     string          `json:"subject"`
	Body        string          `json:"body"`
	ClientIP    string          `json:"client_ip"`
	Extra       json.RawMessage `json:"extra"`
	Metadata    json.RawMessage `json:"metadata"`
	Credential  json.RawMessage `json:"credential"`
	TimeExpire  *time.Time      `json:"time_expire"`
	Description string          `json:"description"`
}

type MarkPaidRequest struct {
	TransactionNo string `json:"transaction_no" binding:"required,max=64"`
}

type FailureRequest struct {
	FailureCode string `json:"failure_code" binding:"required,max=64"`
	FailureMsg  string `json:"failure_msg" binding:"required,max=255"`
}

type RefundRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=255"`
}

func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	var req CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	charge := models.Charge{
		ID:          req.ID,
		AppID:       c.GetString(middleware.AppIDKey),
		Channel:     req.Channel,
		Type:        req.Type,
		OrderID:     req.OrderID,
		Amount:      models.Amount(req.Amount),
		Currency:    req.Currency,
		Subject:     req.Subject,
		Body:        req.Body,
		ClientIP:    req.ClientIP,
		Extra:       jsonBlob(req.Extra),
		Metadata:    jsonBlob(req.Metadata),
		Credential:  jsonBlob(req.Credential),
		TimeExpire:  req.TimeExpire,
		Description: req.Description,
	}

	if err := h.charges.Create(c.Request.Context(), &charge); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, charge)
}

func (h *ChargeHandler) GetCharge(c *gin.Context) {
	charge, ok := h.ownCharge(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, charge)
}

// MarkPaid confirms a charge. Repeated confirmations answer 200 with the
// stored charge.
func (h *ChargeHandler) MarkPaid(c *gin.Context) {
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.ownCharge(c); !ok {
		return
	}

	result, err := h.charges.MarkPaid(c.Request.Context(), c.Param("id"), req.TransactionNo)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"charge":   result.Charge,
		"notified": result.Notified,
	})
}

func (h *ChargeHandler) MarkReversed(c *gin.Context) {
	if _, ok := h.ownCharge(c); !ok {
		return
	}

	charge, err := h.charges.MarkReversed(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, charge)
}

func (h *ChargeHandler) RecordFailure(c *gin.Context) {
	var req FailureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.ownCharge(c); !ok {
		return
	}

	charge, err := h.charges.RecordFailure(c.Request.Context(), c.Param("id"), req.FailureCode, req.FailureMsg)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, charge)
}

func (h *ChargeHandler) CreateRefund(c *gin.Context) {
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.ownCharge(c); !ok {
		return
	}

	refund, charge, err := h.charges.Refund(c.Request.Context(), c.Param("id"), models.Amount(req.Amount), req.Description)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"refund":     refund,
		"refundable": charge.Refundable(),
	})
}

func (h *ChargeHandler) GetChannel(c *gin.Context) {
	charge, ok := h.ownCharge(c)
	if !ok {
		return
	}

	gateway, err := h.charges.Channel(c.Request.Context(), charge.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channel":    gateway.Name(),
		"amount":     gateway.FormatAmount(charge.Amount),
		"refundable": gateway.FormatAmount(charge.Refundable()),
	})
}

// ownCharge loads the charge in the path. Charges of other apps are reported
// as not found.
func (h *ChargeHandler) ownCharge(c *gin.Context) (*models.Charge, bool) {
	charge, err := h.charges.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if charge.AppID != c.GetString(middleware.AppIDKey) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return nil, false
	}
	return charge, true
}

func jsonBlob(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}
