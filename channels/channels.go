// Package channels maps a channel name on a charge or transfer to the gateway
// that handles it.
package channels

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yourusername/gpay-transactions/models"
)

// Gateway is the capability needed to talk to one payment gateway.
type Gateway interface {
	Name() string
	// FormatAmount renders a minor-unit amount the way the gateway expects it.
	FormatAmount(amount models.Amount) string
}

// PayoutGateway is implemented by gateways that can disburse transfers.
type PayoutGateway interface {
	Gateway
	BuildPayout(transfer *models.Transfer, sourceAccount string) (string, error)
}

type UnknownChannelError struct {
	Channel string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("unknown channel %q", e.Channel)
}

// Resolver is a registry of gateways keyed by channel name.
type Resolver struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
}

func NewResolver() *Resolver {
	return &Resolver{gateways: map[string]Gateway{}}
}

func (r *Resolver) Register(name string, gateway Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[name] = gateway
}

func (r *Resolver) Resolve(name string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gateway, ok := r.gateways[name]
	if !ok {
		return nil, &UnknownChannelError{Channel: name}
	}
	return gateway, nil
}

// Names lists the registered channels in sorted order.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
