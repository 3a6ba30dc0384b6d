package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

// Handlers bundles every storefront handler
type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Account  *AccountHandler
	Orders   *OrderHandler
	System   *SystemHandler
}

// AuthMiddleware holds the three access levels the routes need
type AuthMiddleware struct {
	Optional gin.HandlerFunc
	Required gin.HandlerFunc
	Admin    gin.HandlerFunc
}

// Register adds the storefront route groups to r and the health check to the engine
func Register(engine *gin.Engine, r *router.Router, h Handlers, auth AuthMiddleware) {
	engine.GET("/health", h.System.Health)

	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/products", h.Products.ListActive)
	catalogRoutes.GET("/products/:id", h.Products.GetActive)

	cartRoutes := router.NewDomainGroup("cart", "/cart").
		Use(auth.Optional, middleware.Session())
	cartRoutes.GET("", h.Cart.Get)
	cartRoutes.DELETE("", h.Cart.Clear)
	cartRoutes.POST("/items", h.Cart.AddItem)
	cartRoutes.PUT("/items/:product_id", h.Cart.SetQuantity)
	cartRoutes.DELETE("/items/:product_id", h.Cart.RemoveItem)

	checkoutRoutes := router.NewDomainGroup("checkout", "/checkout").
		Use(auth.Optional, middleware.Session())
	checkoutRoutes.GET("", h.Checkout.Get)
	checkoutRoutes.POST("", h.Checkout.Start)
	checkoutRoutes.DELETE("", h.Checkout.Reset)
	checkoutRoutes.POST("/login", h.Checkout.LoginSucceeded)
	checkoutRoutes.PUT("/address-draft", h.Checkout.StageAddressDraft)
	checkoutRoutes.POST("/address", h.Checkout.SaveAddress)
	checkoutRoutes.PUT("/address", h.Checkout.SelectAddress)
	checkoutRoutes.PUT("/payment", h.Checkout.SelectPayment)
	checkoutRoutes.POST("/confirm", h.Checkout.Confirm)

	accountRoutes := router.NewDomainGroup("account", "/account").Use(auth.Required)
	accountRoutes.GET("/addresses", h.Account.ListAddresses)
	accountRoutes.POST("/addresses", h.Account.CreateAddress)
	accountRoutes.PUT("/addresses/:id/default", h.Account.SetDefaultAddress)
	accountRoutes.DELETE("/addresses/:id", h.Account.DeleteAddress)
	accountRoutes.GET("/payment-methods", h.Account.ListPaymentMethods)
	accountRoutes.POST("/payment-methods", h.Account.CreatePaymentMethod)
	accountRoutes.PUT("/payment-methods/:id/default", h.Account.SetDefaultPaymentMethod)

	orderRoutes := router.NewDomainGroup("orders", "/orders").Use(auth.Required)
	orderRoutes.GET("", h.Orders.ListMine)
	orderRoutes.GET("/:id", h.Orders.GetMine)

	adminRoutes := router.NewDomainGroup("admin", "/admin").Use(auth.Required, auth.Admin)
	adminRoutes.Group("products", "/products").
		GET("", h.Products.List).
		POST("", h.Products.Create).
		GET("/:id", h.Products.GetByID).
		PUT("/:id", h.Products.Update).
		PUT("/:id/price", h.Products.ChangePrice).
		POST("/:id/activate", h.Products.Activate).
		POST("/:id/deactivate", h.Products.Deactivate)
	adminRoutes.Group("orders", "/orders").
		GET("", h.Orders.List).
		GET("/:id", h.Orders.GetByID).
		PUT("/:id/status", h.Orders.UpdateStatus).
		PUT("/:id/payment-status", h.Orders.UpdatePaymentStatus)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.Info)

	r.Register(catalogRoutes).
		Register(cartRoutes).
		Register(checkoutRoutes).
		Register(accountRoutes).
		Register(orderRoutes).
		Register(adminRoutes).
		Register(systemRoutes)
}
