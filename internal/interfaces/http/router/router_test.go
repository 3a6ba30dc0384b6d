package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	cart := NewDomainGroup("cart", "/cart")
	cart.GET("", reply("cart")).
		POST("/items", reply("added")).
		PUT("/items/:product_id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("product_id")) }).
		PATCH("/items/:product_id", reply("patched")).
		DELETE("/items/:product_id", reply("removed"))
	r.Register(cart)

	api := r.Setup()
	assert.Equal(t, "/api/v2", api.BasePath())

	tests := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/v2/cart", "cart"},
		{http.MethodPost, "/api/v2/cart/items", "added"},
		{http.MethodPut, "/api/v2/cart/items/abc", "abc"},
		{http.MethodPatch, "/api/v2/cart/items/abc", "patched"},
		{http.MethodDelete, "/api/v2/cart/items/abc", "removed"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}

	assert.Equal(t, http.StatusNotFound, do(engine, http.MethodGet, "/api/v1/cart").Code)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	engine := gin.New()
	var order []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}

	admin := NewDomainGroup("admin", "/admin").Use(mark("group"))
	admin.Group("orders", "/orders").
		Use(mark("subgroup")).
		GET("", func(c *gin.Context) {
			order = append(order, "handler")
			c.Status(http.StatusOK)
		})

	NewRouter(engine).Use(mark("api")).Register(admin).Setup()

	rec := do(engine, http.MethodGet, "/api/v1/admin/orders")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "group", "subgroup", "handler"}, order)
}

func TestDomainGroup_AbortingMiddleware(t *testing.T) {
	engine := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }

	open := NewDomainGroup("catalog", "/catalog").GET("/products", reply("ok"))
	closed := NewDomainGroup("admin", "/admin").Use(deny).GET("/products", reply("ok"))
	NewRouter(engine).Register(open).Register(closed).Setup()

	assert.Equal(t, http.StatusOK, do(engine, http.MethodGet, "/api/v1/catalog/products").Code)
	assert.Equal(t, http.StatusForbidden, do(engine, http.MethodGet, "/api/v1/admin/products").Code)
}

func TestDomainGroup_Accessors(t *testing.T) {
	g := NewDomainGroup("orders", "/orders")
	assert.Equal(t, "orders", g.Name())
	assert.Equal(t, "/orders", g.Prefix())
}
