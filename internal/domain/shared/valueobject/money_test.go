package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    Currency
		wantErr bool
	}{
		{"INR", INR, false},
		{" usd ", USD, false},
		{"", "", true},
		{"RUPEE", "", true},
		{"1NR", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewMoney(t *testing.T) {
	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(-1), INR)
		assert.Error(t, err)
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("accepts zero", func(t *testing.T) {
		m, err := NewMoney(decimal.Zero, INR)
		require.NoError(t, err)
		assert.True(t, m.IsZero())
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a, _ := NewMoney(decimal.NewFromInt(299), INR)
	b, _ := NewMoney(decimal.NewFromInt(349), INR)

	sum, err := a.MultiplyByInt(2).Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(947)))
	assert.Equal(t, "947.00 INR", sum.String())

	_, err = a.Add(Zero(USD))
	assert.Error(t, err)
}

func TestMoney_MarshalJSON(t *testing.T) {
	m, _ := NewMoney(decimal.RequireFromString("598"), INR)
	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"598.00","currency":"INR"}`, string(data))
}
