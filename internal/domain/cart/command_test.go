package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_Apply(t *testing.T) {
	p1 := newItem("P1", 299)
	p2 := newItem("P2", 349)

	c := New()
	cmds := []Command{
		AddItemCommand{Item: p1},
		AddItemCommand{Item: p1},
		AddItemCommand{Item: p2},
		SetQuantityCommand{ProductID: p2.ProductID, Quantity: 3},
		RemoveItemCommand{ProductID: p1.ProductID},
	}
	for _, cmd := range cmds {
		require.NoError(t, c.Apply(cmd), cmd.Name())
	}

	require.Equal(t, 1, c.Len())
	assert.True(t, c.Total().Equal(decimal.NewFromInt(1047)))

	require.NoError(t, c.Apply(ClearCommand{}))
	assert.True(t, c.IsEmpty())
}

func TestCart_ApplyRejectsUnknownCommands(t *testing.T) {
	c := New()

	err := c.Apply(nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)

	// pointer variants satisfy the interface but are not part of the closed set
	err = c.Apply(&AddItemCommand{Item: newItem("P", 1)})
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.True(t, c.IsEmpty())
}
