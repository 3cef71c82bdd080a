// Package router maps the HTTP surface onto handlers, binding every
// protected route to the session gate and its required capability. The
// capability wiring here plus the table in internal/auth is the complete,
// auditable authorization policy.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aquaflow/aquaflow/internal/auth"
	"github.com/aquaflow/aquaflow/internal/config"
	"github.com/aquaflow/aquaflow/internal/handler"
	"github.com/aquaflow/aquaflow/internal/middleware"
)

// Deps collects everything route registration needs. Constructed once in
// cmd/server after all handles are initialized.
type Deps struct {
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig

	Auth      *handler.AuthHandler
	Customers *handler.CustomerHandler
	Services  *handler.ServiceHandler
	RentDues  *handler.RentDueHandler
	Purchases *handler.PurchaseHandler
	Inventory *handler.InventoryHandler
	Users     *handler.UserHandler
	Dashboard *handler.DashboardHandler

	Sessions   auth.SessionStore
	Identities auth.IdentityStore
}

// Register wires all routes onto the echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	limited := middleware.RateLimit(d.RateLimit, d.Redis)
	e.POST("/api/register", d.Auth.Register, limited)
	e.POST("/api/login", d.Auth.Login, limited)
	// Logout works off the cookie alone and stays idempotent, so it does not
	// sit behind the gate: a dead session still gets its cookie cleared.
	e.POST("/api/logout", d.Auth.Logout)

	gate := middleware.SessionAuth(d.Sessions, d.Identities)
	api := e.Group("/api", gate)

	api.GET("/user", d.Auth.CurrentUser)

	read := middleware.RequireCapability
	api.GET("/customers", d.Customers.List, read(auth.CapCustomersRead))
	api.GET("/customers/:id", d.Customers.Get, read(auth.CapCustomersRead))
	api.POST("/customers", d.Customers.Create, read(auth.CapCustomersWrite))
	api.PUT("/customers/:id", d.Customers.Update, read(auth.CapCustomersWrite))
	api.DELETE("/customers/:id", d.Customers.Delete, read(auth.CapCustomersWrite))

	api.GET("/services", d.Services.List, read(auth.CapServicesRead))
	api.GET("/services/today", d.Services.Today, read(auth.CapServicesRead))
	api.GET("/services/:id", d.Services.Get, read(auth.CapServicesRead))
	api.POST("/services", d.Services.Create, read(auth.CapServicesWrite))
	api.PUT("/services/:id", d.Services.Update, read(auth.CapServicesWrite))
	api.DELETE("/services/:id", d.Services.Delete, read(auth.CapServicesWrite))

	api.GET("/rent-dues", d.RentDues.List, read(auth.CapRentDues))
	api.GET("/rent-dues/today", d.RentDues.Today, read(auth.CapRentDues))
	api.POST("/rent-dues", d.RentDues.Create, read(auth.CapRentDues))
	api.PUT("/rent-dues/:id", d.RentDues.Update, read(auth.CapRentDues))
	api.POST("/rent-dues/:id/pay", d.RentDues.Pay, read(auth.CapRentDues))
	api.DELETE("/rent-dues/:id", d.RentDues.Delete, read(auth.CapRentDues))

	api.GET("/purchases", d.Purchases.List, read(auth.CapPurchases))
	api.GET("/purchases/:id", d.Purchases.Get, read(auth.CapPurchases))
	api.POST("/purchases", d.Purchases.Create, read(auth.CapPurchases))
	api.PUT("/purchases/:id", d.Purchases.Update, read(auth.CapPurchases))
	api.DELETE("/purchases/:id", d.Purchases.Delete, read(auth.CapPurchases))

	api.GET("/inventory/items", d.Inventory.List, read(auth.CapInventory))
	api.GET("/inventory/items/:id", d.Inventory.Get, read(auth.CapInventory))
	api.POST("/inventory/items", d.Inventory.Create, read(auth.CapInventory))
	api.PUT("/inventory/items/:id", d.Inventory.Update, read(auth.CapInventory))
	api.POST("/inventory/items/:id/adjust", d.Inventory.Adjust, read(auth.CapInventory))
	api.DELETE("/inventory/items/:id", d.Inventory.Delete, read(auth.CapInventory))

	api.GET("/users", d.Users.List, read(auth.CapUsersManage))
	api.POST("/users", d.Users.Create, read(auth.CapUsersManage))
	api.PUT("/users/:id", d.Users.Update, read(auth.CapUsersManage))
	api.DELETE("/users/:id", d.Users.Delete, read(auth.CapUsersManage))

	api.GET("/dashboard/stats", d.Dashboard.Stats,
		read(auth.CapDashboardRead), middleware.CacheResponse(d.Cache, d.Redis))
}
