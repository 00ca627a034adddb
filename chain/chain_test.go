package chain

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint256.NewInt(1_000_000_000_000_000_000), Units(1))
	assert.Equal(t, Amount(3_000_000_000_000_000_000), Units(3))
	assert.True(t, Units(0).IsZero())
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1000000000000000000", FormatAmount(Units(1)))
	assert.Equal(t, "0", FormatAmount(Zero()))
	assert.Equal(t, "0", FormatAmount(nil))
}

func TestNewAddressUnique(t *testing.T) {
	t.Parallel()

	a, b := NewAddress(), NewAddress()
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, ZeroAddress, a)
}

func TestReceiptIDs(t *testing.T) {
	t.Parallel()

	r1, r2 := NewReceipt(), NewReceipt()
	assert.NotEmpty(t, r1.TxID)
	assert.NotEqual(t, r1.TxID, r2.TxID)
	// ULIDs sort by creation time.
	assert.Less(t, r1.TxID, r2.TxID)
}

type depositEvent struct{ Amount uint64 }
type withdrawEvent struct{ Amount uint64 }

func TestEventsOf(t *testing.T) {
	t.Parallel()

	r := NewReceipt()
	r.Emit(depositEvent{Amount: 1})
	r.Emit(withdrawEvent{Amount: 2})
	r.Emit(depositEvent{Amount: 3})

	deps := EventsOf[depositEvent](r)
	require.Len(t, deps, 2)
	assert.Equal(t, uint64(1), deps[0].Amount)
	assert.Equal(t, uint64(3), deps[1].Amount)

	require.Len(t, EventsOf[withdrawEvent](r), 1)
	assert.Empty(t, EventsOf[string](r))
}
