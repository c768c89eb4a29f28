package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/gpay-transactions/models"
)

func validTransferRequest() CreateTransferRequest {
	return CreateTransferRequest{
		ID:          "tr_1",
		Channel:     "stellar",
		OrderID:     "payout-1",
		Amount:      5000,
		Currency:    "XLM",
		RecipientID: "GRECIPIENT",
		Description: "weekly payout",
	}
}

func TestCreateTransfer(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, "app_1", http.MethodPost, "/api/v1/transfers", validTransferRequest())
	assert.Equal(t, http.StatusCreated, w.Code)

	var transfer models.Transfer
	require.NoError(t, env.db.First(&transfer, "id = ?", "tr_1").Error)
	assert.Equal(t, models.TransferScheduled, transfer.Status)
	assert.Equal(t, models.Amount(5000), transfer.Amount)

	w = env.do(t, "app_2", http.MethodGet, "/api/v1/transfers/tr_1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetFailureEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, "app_1", http.MethodPost, "/api/v1/transfers", validTransferRequest()).Code)

	w := env.do(t, "app_1", http.MethodPost, "/api/v1/transfers/tr_1/failure", FailureRequest{FailureCode: "E01", FailureMsg: "insufficient funds"})
	assert.Equal(t, http.StatusOK, w.Code)

	var transfer models.Transfer
	require.NoError(t, env.db.First(&transfer, "id = ?", "tr_1").Error)
	assert.Equal(t, models.TransferFailed, transfer.Status)
	assert.Equal(t, "E01", transfer.FailureCode)
	assert.Equal(t, "insufficient funds", transfer.FailureMsg)

	w = env.do(t, "app_1", http.MethodPost, "/api/v1/transfers/missing/failure", FailureRequest{FailureCode: "E01", FailureMsg: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuildEnvelopeEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, "app_1", http.MethodPost, "/api/v1/transfers", validTransferRequest()).Code)

	w := env.do(t, "app_1", http.MethodPost, "/api/v1/transfers/tr_1/envelope", EnvelopeRequest{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "base64_xdr")

	wechat := validTransferRequest()
	wechat.ID = "tr_2"
	wechat.Channel = "wechat"
	wechat.Currency = "CNY"
	require.Equal(t, http.StatusCreated, env.do(t, "app_1", http.MethodPost, "/api/v1/transfers", wechat).Code)

	w = env.do(t, "app_1", http.MethodPost, "/api/v1/transfers/tr_2/envelope", EnvelopeRequest{SourceAccount: "GSOURCE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
