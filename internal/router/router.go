package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/config"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/handler"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/middleware"
)

// Deps bundles everything the route table needs.  Redis is optional;
// when nil the rate limiter and response cache are skipped.
type Deps struct {
	DB        *sql.DB
	Redis     *redis.Client
	JWTSecret string
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig

	Scan      *handler.ScanHandler
	Pass      *handler.PassHandler
	Occupancy *handler.OccupancyHandler
	Venue     *handler.VenueHandler
	Issue     *handler.IssueHandler
	Devices   middleware.DeviceSource
}

// Register wires the full route table onto the Echo instance.
//
//	public:   health probes, venue discovery, occupancy
//	devices:  /v1/scan, authenticated by per-device API keys
//	members:  /v1/me/*, authenticated by JWT
//	operator: issuance, cancel and venue administration, JWT + role
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(d.DB))

	// public discovery
	pub := e.Group("/v1")
	pub.GET("/venues", d.Venue.List)
	pub.GET("/venues/:id", d.Venue.Get)
	occupancy := pub.Group("")
	if d.Redis != nil && d.Cache.Enabled {
		occupancy.Use(middleware.NewRedisCache(d.Cache, d.Redis))
	}
	occupancy.GET("/venues/:id/occupancy", d.Occupancy.Get)

	// gate devices
	gate := e.Group("/v1", middleware.ScannerAuth(d.Devices))
	if d.Redis != nil {
		gate.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))
	}
	gate.POST("/scan", d.Scan.Scan)

	// members
	me := e.Group("/v1/me", middleware.JWTAuth(d.JWTSecret), middleware.RequireRole("MEMBER", "OPERATOR"))
	me.GET("/passes", d.Pass.ListMine)
	me.GET("/passes/:id", d.Pass.GetMine)

	// operator administration
	op := e.Group("/v1", middleware.JWTAuth(d.JWTSecret), middleware.RequireRole("OPERATOR"))
	op.POST("/orders/paid", d.Issue.OrderPaid)
	op.POST("/passes/:id/cancel", d.Pass.Cancel)
	op.POST("/venues", d.Venue.Create)
	op.PATCH("/venues/:id/capacity", d.Venue.UpdateCapacity)
	op.PATCH("/venues/:id/active", d.Venue.SetActive)
	op.POST("/venues/:id/devices", d.Venue.RegisterDevice)
	op.DELETE("/devices/:id", d.Venue.DeactivateDevice)
}
