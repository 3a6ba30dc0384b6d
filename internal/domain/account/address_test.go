package account

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() AddressFields {
	return AddressFields{
		Name:       "Radha Devi",
		Phone:      "+91 98200 00000",
		Street:     "12 Temple Road",
		City:       "Vrindavan",
		State:      "Uttar Pradesh",
		PostalCode: "281121",
		Country:    "India",
		Category:   AddressCategoryHome,
	}
}

func TestNewAddress(t *testing.T) {
	userID := uuid.New()

	t.Run("creates a complete address", func(t *testing.T) {
		a, err := NewAddress(userID, validFields())
		require.NoError(t, err)
		assert.Equal(t, userID, a.UserID)
		assert.False(t, a.IsDefault)
		assert.True(t, a.IsComplete())
		assert.Equal(t, "12 Temple Road, Vrindavan, Uttar Pradesh 281121, India", a.OneLine())
	})

	t.Run("trims and normalizes", func(t *testing.T) {
		f := validFields()
		f.City = "  Mayapur "
		f.Category = " WORK "
		a, err := NewAddress(userID, f)
		require.NoError(t, err)
		assert.Equal(t, "Mayapur", a.City)
		assert.Equal(t, AddressCategoryWork, a.Category)
	})

	t.Run("reports every missing field", func(t *testing.T) {
		f := validFields()
		f.Phone = ""
		f.PostalCode = "   "
		_, err := NewAddress(userID, f)
		require.Error(t, err)

		var incomplete *IncompleteAddressError
		require.True(t, errors.As(err, &incomplete))
		assert.Equal(t, []string{"phone", "postal_code"}, incomplete.Fields)
		assert.Equal(t, "INCOMPLETE_ADDRESS", shared.ErrorCode(err))
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		f := validFields()
		f.Category = "ashram"
		_, err := NewAddress(userID, f)
		require.Error(t, err)
		assert.Equal(t, "INVALID_ADDRESS_CATEGORY", shared.ErrorCode(err))
	})

	t.Run("requires an owner", func(t *testing.T) {
		_, err := NewAddress(uuid.Nil, validFields())
		assert.Error(t, err)
	})
}

func TestParsePaymentMode(t *testing.T) {
	tests := []struct {
		in   string
		want PaymentMode
	}{
		{"cod", PaymentModeCOD},
		{"Cash-On-Delivery", PaymentModeCOD},
		{"UPI", PaymentModeUPI},
		{"card", PaymentModeCard},
		{"net_banking", PaymentModeNetBanking},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePaymentMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePaymentMode("crypto")
	assert.Error(t, err)
}

func TestNewPaymentMethod(t *testing.T) {
	userID := uuid.New()

	pm, err := NewPaymentMethod(userID, PaymentModeUPI, "My UPI", map[string]string{"vpa": "radha@upi"})
	require.NoError(t, err)
	assert.Equal(t, PaymentModeUPI, pm.Type)
	assert.False(t, pm.IsDefault)

	_, err = NewPaymentMethod(userID, "wallet", "x", nil)
	assert.Error(t, err)

	_, err = NewPaymentMethod(userID, PaymentModeCard, " ", nil)
	assert.Error(t, err)

	pm, err = NewPaymentMethod(userID, PaymentModeCOD, "Cash", nil)
	require.NoError(t, err)
	assert.NotNil(t, pm.Details)
}
