package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates active product", func(t *testing.T) {
		p, err := NewProduct("gita-hc", "Bhagavad Gita As It Is", decimal.NewFromInt(299))
		require.NoError(t, err)

		assert.Equal(t, "GITA-HC", p.SKU)
		assert.Equal(t, "Bhagavad Gita As It Is", p.Title)
		assert.True(t, p.UnitPrice.Equal(decimal.NewFromInt(299)))
		assert.True(t, p.IsActive())
		assert.Equal(t, 1, p.GetVersion())

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		_, err := NewProduct("SKU-1", "Title", decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")

		_, err = NewProduct("SKU-1", "Title", decimal.NewFromInt(-5))
		require.Error(t, err)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewProduct("SKU-1", "   ", decimal.NewFromInt(10))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "title cannot be empty")
	})

	t.Run("rejects bad sku", func(t *testing.T) {
		_, err := NewProduct("SKU 1", "Title", decimal.NewFromInt(10))
		require.Error(t, err)
	})
}

func TestProduct_ChangePrice(t *testing.T) {
	p, err := NewProduct("SKU-1", "Srimad Bhagavatam Vol 1", decimal.NewFromInt(349))
	require.NoError(t, err)
	p.ClearDomainEvents()

	t.Run("records event with old and new price", func(t *testing.T) {
		require.NoError(t, p.ChangePrice(decimal.NewFromInt(399)))
		assert.Equal(t, 2, p.GetVersion())

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*ProductPriceChangedEvent)
		require.True(t, ok)
		assert.True(t, ev.OldPrice.Equal(decimal.NewFromInt(349)))
		assert.True(t, ev.NewPrice.Equal(decimal.NewFromInt(399)))
	})

	t.Run("same price is a no-op", func(t *testing.T) {
		p.ClearDomainEvents()
		require.NoError(t, p.ChangePrice(decimal.NewFromInt(399)))
		assert.Empty(t, p.GetDomainEvents())
	})

	t.Run("zero is rejected", func(t *testing.T) {
		assert.Error(t, p.ChangePrice(decimal.Zero))
	})
}

func TestProduct_StatusTransitions(t *testing.T) {
	p, err := NewProduct("SKU-1", "Title", decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.Error(t, p.Activate())
	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive())
	assert.Error(t, p.Deactivate())
	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive())
}
