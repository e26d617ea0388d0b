package strategy

import (
	"github.com/rs/zerolog"

	"github.com/openvault-labs/tvm/internal/logger"
)

// Executor performs a strategy's external calls after the vault ledger's
// liquidity precondition has passed. Execution is all-or-nothing from the
// caller's point of view: an error aborts the enclosing operation.
type Executor interface {
	Execute(s Strategy) error
}

// NoopExecutor records the routing request and succeeds without performing
// any external call. Real protocol integrations plug in their own Executor.
type NoopExecutor struct {
	logger zerolog.Logger
}

// NewNoopExecutor returns an Executor that only logs.
func NewNoopExecutor() *NoopExecutor {
	return &NoopExecutor{
		logger: logger.GetForComponent("strategy_executor"),
	}
}

func (e *NoopExecutor) Execute(s Strategy) error {
	e.logger.Info().
		Str("strategy", s.ID).
		Int("calls", len(s.Destinations)).
		Str("totalValue", s.TotalValue().String()).
		Msg("Strategy execution skipped (noop executor)")
	return nil
}
