package router

import (
	"time"

	"b2bportal/internal/config"
	"b2bportal/internal/handler"
	"b2bportal/internal/infra"
	"b2bportal/internal/middleware"
	"b2bportal/internal/repository"
	"b2bportal/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure handles built by the composition root.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	SMSBreaker *infra.CircuitBreaker
	// Notifier receives confirmed orders; nil disables notifications.
	Notifier service.Notifier
	// Sheets is nil when the purchase-sheet export is not configured.
	Sheets infra.SheetWriter
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// a nil *redis.Client must not become a non-nil interface
	var cache redis.Cmdable
	if d.Redis != nil {
		cache = d.Redis
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimit(
		middleware.NewLimiter(cache, "api", 1000, time.Minute),
		"too many requests, try again shortly",
	))

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(d.DB)
	accountRepo := repository.NewAccountRepository(d.DB)
	profileRepo := repository.NewProfileRepository(d.DB)
	orderRepo := repository.NewOrderRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(accountRepo, profileRepo, cfg)
	catalogSvc := service.NewCatalogService(productRepo, profileRepo, cache,
		time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second)
	orderSvc := service.NewOrderService(orderRepo, productRepo, d.Notifier, service.OrderConfig{
		Strict:     cfg.CheckoutStrict,
		MailFrom:   cfg.MailFrom,
		StaffEmail: cfg.StaffEmail,
	})
	profileSvc := service.NewProfileService(profileRepo, productRepo, catalogSvc)
	exportSvc := service.NewExportService(orderRepo, productRepo, d.Sheets)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	checkoutH := handler.NewCheckoutHandler(orderSvc)
	ordersH := handler.NewOrdersHandler(orderSvc, exportSvc)
	profilesH := handler.NewProfilesHandler(profileSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(d.DB, d.Redis, d.SMSBreaker))

	loginLimit := middleware.RateLimit(
		middleware.NewLimiter(cache, "login", 20, time.Minute),
		"too many login attempts, try again in a minute",
	)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/register", loginLimit, authH.Register)
		auth.POST("/login", loginLimit, authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Guests and customers share the storefront
	shop := r.Group("/v1", middleware.OptionalAuth(cfg.JWTSecret))
	{
		shop.GET("/catalog", catalogH.View)
		shop.POST("/checkout/preview", checkoutH.Preview)
		shop.POST("/checkout/confirm", checkoutH.Confirm)
	}

	staff := r.Group("/v1/staff", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireStaff())
	{
		staff.GET("/orders/new-count", ordersH.NewCount)
		staff.GET("/orders", ordersH.List)
		staff.POST("/orders/export", ordersH.Export)
		staff.GET("/orders/:id", ordersH.Get)
		staff.PATCH("/orders/:id/done", ordersH.MarkDone)

		staff.GET("/profiles/:account_id", profilesH.Get)
		staff.PUT("/profiles/:account_id", profilesH.Update)
		staff.PUT("/profiles/:account_id/recommendations", profilesH.SetRecommendations)
	}

	// Swagger UI, disabled in production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
