package channels

import (
	"github.com/yourusername/gpay-transactions/models"
)

// MerchantGateway describes a merchant-account channel such as alipay or
// wechat. It carries the account settings the external SDK needs; no network
// calls are made here.
type MerchantGateway struct {
	Channel    string
	AppID      string
	MerchantID string
	NotifyURL  string
	// AmountInYuan is set for gateways that take decimal major units
	// (alipay) rather than integer fen (wechat).
	AmountInYuan bool
}

func (g *MerchantGateway) Name() string {
	return g.Channel
}

func (g *MerchantGateway) FormatAmount(amount models.Amount) string {
	if g.AmountInYuan {
		return amount.Decimal(2).StringFixed(2)
	}
	return amount.String()
}
