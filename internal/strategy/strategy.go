package strategy

import "ares_go/internal/domain"

// Strategy is the policy hook invoked by the replayer after the broker has
// processed each tick. Implementations submit orders through a broker they
// were constructed with; the engine depends only on this capability.
type Strategy interface {
	OnTrade(trade domain.Trade)
}

// Func adapts a plain function to the Strategy interface.
type Func func(trade domain.Trade)

// OnTrade implements Strategy.
func (f Func) OnTrade(trade domain.Trade) {
	f(trade)
}
