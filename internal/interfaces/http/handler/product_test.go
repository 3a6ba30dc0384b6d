package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Customer catalog ====================

func TestProductHandler_ListActive(t *testing.T) {
	srv := newTestServer(t)
	gita := srv.product("BG-001", "Bhagavad Gita", "350")
	srv.product("UP-001", "Upanishads", "420")
	_, err := srv.products.Deactivate(t.Context(), gita.ID)
	require.NoError(t, err)

	rec, env := srv.do(request{method: http.MethodGet, path: "/api/v1/catalog/products"})

	assert.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]catalogapp.ProductResponse](t, env)
	require.Len(t, products, 1)
	assert.Equal(t, "Upanishads", products[0].Title)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 1, env.Meta.Page)
	assert.Equal(t, 20, env.Meta.PageSize)
}

func TestProductHandler_ListActive_BadQuery(t *testing.T) {
	srv := newTestServer(t)
	rec, env := srv.do(request{method: http.MethodGet, path: "/api/v1/catalog/products?page_size=500"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
}

func TestProductHandler_GetActive(t *testing.T) {
	srv := newTestServer(t)
	p := srv.product("BG-001", "Bhagavad Gita", "350")

	t.Run("found", func(t *testing.T) {
		rec, env := srv.do(request{method: http.MethodGet, path: "/api/v1/catalog/products/" + p.ID.String()})
		assert.Equal(t, http.StatusOK, rec.Code)
		got := decode[catalogapp.ProductResponse](t, env)
		assert.Equal(t, "BG-001", got.SKU)
		assert.Equal(t, "INR", got.Currency)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec, env := srv.do(request{method: http.MethodGet, path: "/api/v1/catalog/products/not-a-uuid"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, env.Error.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec, env := srv.do(request{method: http.MethodGet, path: "/api/v1/catalog/products/" + uuid.NewString()})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("inactive product is hidden", func(t *testing.T) {
		_, err := srv.products.Deactivate(t.Context(), p.ID)
		require.NoError(t, err)
		rec, _ := srv.do(request{method: http.MethodGet, path: "/api/v1/catalog/products/" + p.ID.String()})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// ==================== Admin catalog ====================

func TestProductHandler_AdminAccess(t *testing.T) {
	srv := newTestServer(t)
	customer, _ := srv.token(auth.RoleCustomer)

	rec, _ := srv.do(request{method: http.MethodGet, path: "/api/v1/admin/products"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = srv.do(request{method: http.MethodGet, path: "/api/v1/admin/products", token: customer})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductHandler_AdminLifecycle(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := srv.token(auth.RoleAdmin)

	rec, env := srv.do(request{
		method: http.MethodPost,
		path:   "/api/v1/admin/products",
		token:  admin,
		body: map[string]any{
			"sku":        "ys-001",
			"title":      "Yoga Sutras",
			"author":     "Patanjali",
			"unit_price": "275.50",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[catalogapp.ProductResponse](t, env)
	assert.Equal(t, "YS-001", created.SKU)
	assert.Equal(t, "active", created.Status)
	base := "/api/v1/admin/products/" + created.ID.String()

	t.Run("duplicate sku conflicts", func(t *testing.T) {
		rec, _ := srv.do(request{
			method: http.MethodPost,
			path:   "/api/v1/admin/products",
			token:  admin,
			body:   map[string]any{"sku": "YS-001", "title": "Another", "unit_price": "10"},
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		rec, env := srv.do(request{
			method: http.MethodPost,
			path:   "/api/v1/admin/products",
			token:  admin,
			body:   map[string]any{"sku": "X-1", "unit_price": "10"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotEmpty(t, env.Error.Details)
		assert.Equal(t, "title", env.Error.Details[0].Field)
	})

	t.Run("update", func(t *testing.T) {
		rec, env := srv.do(request{method: http.MethodPut, path: base, token: admin,
			body: map[string]any{"description": "Aphorisms on yoga"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Aphorisms on yoga", decode[catalogapp.ProductResponse](t, env).Description)
	})

	t.Run("change price", func(t *testing.T) {
		rec, env := srv.do(request{method: http.MethodPut, path: base + "/price", token: admin,
			body: map[string]any{"unit_price": "300"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[catalogapp.ProductResponse](t, env).UnitPrice.Equal(mustDecimal(t, "300")))
	})

	t.Run("deactivate twice", func(t *testing.T) {
		rec, env := srv.do(request{method: http.MethodPost, path: base + "/deactivate", token: admin})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "inactive", decode[catalogapp.ProductResponse](t, env).Status)

		rec, env = srv.do(request{method: http.MethodPost, path: base + "/deactivate", token: admin})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "ALREADY_INACTIVE", env.Error.Code)
	})

	t.Run("admin list includes inactive", func(t *testing.T) {
		rec, env := srv.do(request{method: http.MethodGet, path: "/api/v1/admin/products?status=inactive", token: admin})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]catalogapp.ProductResponse](t, env), 1)
	})

	t.Run("activate", func(t *testing.T) {
		rec, env := srv.do(request{method: http.MethodPost, path: base + "/activate", token: admin})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "active", decode[catalogapp.ProductResponse](t, env).Status)
	})

	t.Run("get by id", func(t *testing.T) {
		rec, _ := srv.do(request{method: http.MethodGet, path: base, token: admin})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
