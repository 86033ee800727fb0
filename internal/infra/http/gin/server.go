package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayhub/internal/infra/config"
	"stayhub/internal/infra/obs"
)

type ListingHTTP interface {
	Create(c *gin.Context)
	Search(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	UploadImage(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
}

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
}

type AdminHTTP interface {
	ListUsers(c *gin.Context)
	GetUser(c *gin.Context)
	DeleteUser(c *gin.Context)
	ChangeRole(c *gin.Context)
}

type Handlers struct {
	Listing   ListingHTTP
	Booking   BookingHTTP
	Auth      AuthHTTP
	Admin     AdminHTTP
	Nominatim gin.HandlerFunc
	// Authentication resolves bearer tokens on every request; RequireAuth
	// guards protected routes.
	Authentication gin.HandlerFunc
	RequireAuth    gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 12 << 20
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.Authentication != nil {
		router.Use(h.Authentication)
	}
	protected := h.RequireAuth
	if protected == nil {
		protected = func(c *gin.Context) { c.Next() }
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")
	if h.Nominatim != nil {
		api.GET("/nominatim/*path", h.Nominatim)
	}
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
	}
	if h.Admin != nil {
		admin := api.Group("/auth/users", protected)
		admin.GET("", h.Admin.ListUsers)
		admin.GET("/:id", h.Admin.GetUser)
		admin.DELETE("/:id", h.Admin.DeleteUser)
		admin.PUT("/:id/role", h.Admin.ChangeRole)
	}
	if h.Listing != nil {
		housings := api.Group("/housings")
		housings.GET("", h.Listing.Search)
		housings.GET("/:id", h.Listing.Get)
		housings.POST("", protected, h.Listing.Create)
		housings.PUT("/:id", protected, h.Listing.Update)
		housings.PATCH("/:id", protected, h.Listing.Update)
		housings.DELETE("/:id", protected, h.Listing.Delete)
		housings.POST("/:id/images", protected, h.Listing.UploadImage)
	}
	if h.Booking != nil {
		bookings := api.Group("/bookings", protected)
		bookings.POST("", h.Booking.Create)
		bookings.GET("", h.Booking.List)
		bookings.GET("/:id", h.Booking.Get)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Not Found - " + c.Request.URL.Path})
	})
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
