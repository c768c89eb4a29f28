package channels

import (
	"github.com/yourusername/gpay-transactions/config"
)

// NewDefaultResolver registers the alipay, wechat and stellar channels.
func NewDefaultResolver(cfg *config.Config) *Resolver {
	r := NewResolver()
	r.Register("alipay", &MerchantGateway{
		Channel:      "alipay",
		AppID:        cfg.AlipayAppID,
		NotifyURL:    cfg.AlipayNotifyURL,
		AmountInYuan: true,
	})
	r.Register("wechat", &MerchantGateway{
		Channel:    "wechat",
		AppID:      cfg.WechatAppID,
		MerchantID: cfg.WechatMchID,
		NotifyURL:  cfg.WechatNotifyURL,
	})
	r.Register("stellar", NewStellarGateway(cfg.HorizonURL, cfg.NetworkPassphrase, cfg.StellarIssuers))
	return r
}
