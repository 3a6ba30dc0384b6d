package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	appaccount "github.com/storefront/backend/internal/application/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/api/v1/account/addresses", "/api/v1/account/payment-methods"} {
		rec, _ := srv.do(request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAccountHandler_Addresses(t *testing.T) {
	srv := newTestServer(t)
	token, _ := srv.token()
	call := func(method, path string, body any) (int, envelope) {
		rec, env := srv.do(request{method: method, path: "/api/v1/account/addresses" + path, token: token, body: body})
		return rec.Code, env
	}

	status, env := call(http.MethodPost, "", completeAddress())
	require.Equal(t, http.StatusCreated, status)
	home := decode[appaccount.AddressResponse](t, env)
	assert.True(t, home.IsDefault, "first address becomes default")
	assert.NotEmpty(t, home.OneLine)

	work := completeAddress()
	work["category"] = "work"
	work["street"] = "4 Mount Road"
	status, env = call(http.MethodPost, "", work)
	require.Equal(t, http.StatusCreated, status)
	office := decode[appaccount.AddressResponse](t, env)
	assert.False(t, office.IsDefault)

	t.Run("invalid category", func(t *testing.T) {
		bad := completeAddress()
		bad["category"] = "temple"
		status, env := call(http.MethodPost, "", bad)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_ADDRESS_CATEGORY", env.Error.Code)
	})

	t.Run("set default", func(t *testing.T) {
		status, env := call(http.MethodPut, "/"+office.ID.String()+"/default", nil)
		require.Equal(t, http.StatusOK, status)
		for _, a := range decode[[]appaccount.AddressResponse](t, env) {
			assert.Equal(t, a.ID == office.ID, a.IsDefault, a.ID)
		}
	})

	t.Run("set default on unknown address", func(t *testing.T) {
		status, _ := call(http.MethodPut, "/"+uuid.NewString()+"/default", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("delete default promotes another", func(t *testing.T) {
		status, _ := call(http.MethodDelete, "/"+office.ID.String(), nil)
		require.Equal(t, http.StatusNoContent, status)

		status, env := call(http.MethodGet, "", nil)
		require.Equal(t, http.StatusOK, status)
		list := decode[[]appaccount.AddressResponse](t, env)
		require.Len(t, list, 1)
		assert.Equal(t, home.ID, list[0].ID)
		assert.True(t, list[0].IsDefault)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		other, _ := srv.token()
		rec, env := srv.do(request{method: http.MethodGet, path: "/api/v1/account/addresses", token: other})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]appaccount.AddressResponse](t, env))
	})
}

func TestAccountHandler_PaymentMethods(t *testing.T) {
	srv := newTestServer(t)
	token, _ := srv.token()
	call := func(method, path string, body any) (int, envelope) {
		rec, env := srv.do(request{method: method, path: "/api/v1/account/payment-methods" + path, token: token, body: body})
		return rec.Code, env
	}

	status, env := call(http.MethodPost, "", map[string]any{"type": "upi", "display_name": "Personal UPI"})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	upi := decode[appaccount.PaymentMethodResponse](t, env)
	assert.True(t, upi.IsDefault)

	status, env = call(http.MethodPost, "", map[string]any{"type": "card", "display_name": "Visa 4242"})
	require.Equal(t, http.StatusCreated, status)
	card := decode[appaccount.PaymentMethodResponse](t, env)

	status, env = call(http.MethodPost, "", map[string]any{"type": "cheque", "display_name": "Cheque book"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PAYMENT_MODE", env.Error.Code)

	status, env = call(http.MethodPut, "/"+card.ID.String()+"/default", nil)
	require.Equal(t, http.StatusOK, status)
	for _, m := range decode[[]appaccount.PaymentMethodResponse](t, env) {
		assert.Equal(t, m.ID == card.ID, m.IsDefault)
	}

	status, env = call(http.MethodGet, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]appaccount.PaymentMethodResponse](t, env), 2)

	status, _ = call(http.MethodPut, "/not-a-uuid/default", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
