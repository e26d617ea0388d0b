package strategy

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStrategy() Strategy {
	return Strategy{
		ID:           "lp-rebalance",
		Name:         "LP Rebalance",
		Destinations: []string{"dex-router", "lending-market"},
		Payloads:     [][]byte{[]byte("swap"), []byte("supply")},
		Values:       []sdkmath.Int{sdkmath.NewInt(100), sdkmath.NewInt(250)},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(validStrategy()))

	s, err := r.Get("lp-rebalance")
	require.NoError(t, err)
	assert.Equal(t, "LP Rebalance", s.Name)
	assert.Equal(t, sdkmath.NewInt(350), s.TotalValue())
}

func TestRegistry_UnknownID(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestRegistry_RejectsInvalidDefinitions(t *testing.T) {
	r := NewRegistry()

	s := validStrategy()
	s.ID = ""
	assert.ErrorIs(t, r.Register(s), ErrInvalidStrategy)

	s = validStrategy()
	s.Payloads = s.Payloads[:1]
	assert.ErrorIs(t, r.Register(s), ErrInvalidStrategy)

	s = validStrategy()
	s.Values[0] = sdkmath.NewInt(-1)
	assert.ErrorIs(t, r.Register(s), ErrInvalidStrategy)

	s = validStrategy()
	s.Destinations = nil
	s.Payloads = nil
	s.Values = nil
	assert.ErrorIs(t, r.Register(s), ErrInvalidStrategy)
}

func TestRegistry_ListIsSorted(t *testing.T) {
	r := NewRegistry()

	a := validStrategy()
	a.ID = "bravo"
	b := validStrategy()
	b.ID = "alpha"
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].ID)
	assert.Equal(t, "bravo", list[1].ID)
}
