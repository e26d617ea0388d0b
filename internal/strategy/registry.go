package strategy

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/openvault-labs/tvm/internal/logger"
)

// Error definitions for zero-tolerance error handling
var (
	ErrUnknownStrategy = errors.New("strategy id is not registered")
	ErrInvalidStrategy = errors.New("strategy definition is invalid")
)

var registryLogger = logger.GetForComponent("strategy_registry")

// Strategy is an off-chain-defined routing plan for vault-held funds: a set
// of external call destinations with payloads and the value attached to
// each call. The vault ledger validates the liquidity precondition; an
// Executor performs the calls.
type Strategy struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Destinations []string      `json:"destinations"`
	Payloads     [][]byte      `json:"payloads"`
	Values       []sdkmath.Int `json:"values"`
}

func (s Strategy) validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidStrategy)
	}
	if len(s.Destinations) == 0 {
		return fmt.Errorf("%w: strategy %s has no destinations", ErrInvalidStrategy, s.ID)
	}
	if len(s.Destinations) != len(s.Payloads) || len(s.Destinations) != len(s.Values) {
		return fmt.Errorf("%w: strategy %s has %d destinations, %d payloads, %d values",
			ErrInvalidStrategy, s.ID, len(s.Destinations), len(s.Payloads), len(s.Values))
	}
	for i, dest := range s.Destinations {
		if dest == "" {
			return fmt.Errorf("%w: strategy %s has empty destination at index %d", ErrInvalidStrategy, s.ID, i)
		}
		if s.Values[i].IsNil() || s.Values[i].IsNegative() {
			return fmt.Errorf("%w: strategy %s has invalid value at index %d", ErrInvalidStrategy, s.ID, i)
		}
	}
	return nil
}

// TotalValue returns the sum of the values attached to the strategy's calls.
func (s Strategy) TotalValue() sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, v := range s.Values {
		if !v.IsNil() {
			total = total.Add(v)
		}
	}
	return total
}

// Registry holds the strategies an agent may route funds to.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry returns an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds or replaces a strategy after validating it.
func (r *Registry) Register(s Strategy) error {
	if err := s.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.strategies[s.ID] = s

	registryLogger.Info().
		Str("id", s.ID).
		Str("name", s.Name).
		Int("calls", len(s.Destinations)).
		Msg("Strategy registered")

	return nil
}

// Get returns the strategy with the given id.
func (r *Registry) Get(id string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[id]
	if !ok {
		return Strategy{}, fmt.Errorf("%w: %s", ErrUnknownStrategy, id)
	}
	return s, nil
}

// List returns all registered strategies ordered by id.
func (r *Registry) List() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
