package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appaccount "github.com/storefront/backend/internal/application/account"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope mirrors dto.Response with the payload left undecoded
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type testServer struct {
	t        *testing.T
	engine   *gin.Engine
	jwt      *auth.JWTService
	products *catalogapp.ProductService
	db       *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	productRepo := persistence.NewGormProductRepository(db)
	addressRepo := persistence.NewGormAddressRepository(db)
	methodRepo := persistence.NewGormPaymentMethodRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)

	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })

	sessions := checkoutapp.NewSessionManager(
		cache.NewInMemorySessionStore(time.Hour, checkout.LookupFailureAllow),
		checkout.LookupFailureAllow, time.Minute, nil)

	productService := catalogapp.NewProductService(productRepo, "INR", nil)
	submitter := orderapp.NewSubmissionService(orderRepo, productRepo, addressRepo, idempotency,
		valueobject.INR, nil, orderapp.WithPaymentMethods(methodRepo))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "handler-test-secret-at-least-32-chars",
		Issuer:                "storefront-test",
		AccessTokenExpiration: time.Hour,
	})

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())

	handlers := Handlers{
		Products: NewProductHandler(productService),
		Cart:     NewCartHandler(checkoutapp.NewCartService(sessions, productRepo, "INR")),
		Checkout: NewCheckoutHandler(checkoutapp.NewService(sessions, addressRepo, submitter, idempotency, time.Minute, "INR", nil)),
		Account:  NewAccountHandler(appaccount.NewAddressService(addressRepo), appaccount.NewPaymentMethodService(methodRepo)),
		Orders:   NewOrderHandler(orderapp.NewOrderService(orderRepo, nil)),
		System: NewSystemHandler("Storefront API", "test", map[string]HealthCheck{
			"database": sqlDB.PingContext,
		}),
	}
	r := router.NewRouter(engine)
	Register(engine, r, handlers, AuthMiddleware{
		Optional: middleware.OptionalAuth(jwtService),
		Required: middleware.RequireAuth(jwtService, nil),
		Admin:    middleware.RequireAdmin(),
	})
	r.Setup()

	return &testServer{t: t, engine: engine, jwt: jwtService, products: productService, db: db}
}

// token mints an access token for a fresh user
func (s *testServer) token(roles ...string) (string, uuid.UUID) {
	s.t.Helper()
	userID := uuid.New()
	token, _, err := s.jwt.GenerateAccessToken(auth.GenerateTokenInput{UserID: userID, Roles: roles})
	require.NoError(s.t, err)
	return token, userID
}

// product creates an active product directly through the catalog service
func (s *testServer) product(sku, title, price string) catalogapp.ProductResponse {
	s.t.Helper()
	p, err := s.products.Create(context.Background(), catalogapp.CreateProductRequest{
		SKU:       sku,
		Title:     title,
		UnitPrice: mustDecimal(s.t, price),
	})
	require.NoError(s.t, err)
	return *p
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	session string
	headers map[string]string
}

func (s *testServer) do(req request) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var body bytes.Buffer
	if req.body != nil {
		switch b := req.body.(type) {
		case string:
			body.WriteString(b)
		default:
			require.NoError(s.t, json.NewEncoder(&body).Encode(b))
		}
	}
	httpReq := httptest.NewRequest(req.method, req.path, &body)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.session != "" {
		httpReq.Header.Set(middleware.SessionIDHeader, req.session)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httpReq)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func completeAddress() map[string]any {
	return map[string]any{
		"name":        "Meera Iyer",
		"phone":       "+91 98450 00000",
		"street":      "12 Temple Road",
		"city":        "Chennai",
		"state":       "Tamil Nadu",
		"postal_code": "600004",
		"country":     "India",
		"category":    "home",
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
