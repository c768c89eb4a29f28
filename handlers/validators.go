package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yourusername/gpay-transactions/channels"
	"github.com/yourusername/gpay-transactions/services"
	"github.com/yourusername/gpay-transactions/store"
)

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3,4}$`)

// RegisterValidators adds the "channel" and "currency" binding tags to gin's
// validator. channel accepts the given channel names.
func RegisterValidators(channelNames []string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	known := map[string]bool{}
	for _, name := range channelNames {
		known[name] = true
	}

	if err := v.RegisterValidation("channel", func(fl validator.FieldLevel) bool {
		return known[fl.Field().String()]
	}); err != nil {
		return err
	}
	return v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyPattern.MatchString(fl.Field().String())
	})
}

func writeError(c *gin.Context, err error) {
	var perr *store.PersistenceError
	var unknown *channels.UnknownChannelError

	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &unknown):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "UnknownChannel"})
	case errors.Is(err, store.ErrRefundExceedsAmount):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "RefundExceedsAmount"})
	case errors.Is(err, services.ErrChargeNotPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "ChargeNotPaid"})
	case errors.Is(err, services.ErrFailureRequired), errors.Is(err, services.ErrNotPayoutCapable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &perr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist changes"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
