package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/detailing-scheduler/internal/audit"
	"github.com/BruksfildServices01/detailing-scheduler/internal/config"
	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/handlers"
	"github.com/BruksfildServices01/detailing-scheduler/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/detailing-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/detailing-scheduler/internal/media"
	"github.com/BruksfildServices01/detailing-scheduler/internal/metrics"
	"github.com/BruksfildServices01/detailing-scheduler/internal/middleware"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
	ucOrder "github.com/BruksfildServices01/detailing-scheduler/internal/usecase/order"
)

// Deps are the singletons built in main.
type Deps struct {
	DB          *gorm.DB
	Config      *config.Config
	Log         *zap.SugaredLogger
	Metrics     *metrics.Metrics
	Audit       *audit.Dispatcher
	Idempotency ucOrder.IdempotencyStore
	Uploader    *media.Uploader
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORSMiddleware())

	var orderAudit ucOrder.Auditor
	if d.Audit != nil {
		orderAudit = d.Audit
	}

	var orderMetrics ucOrder.Metrics
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
		orderMetrics = d.Metrics
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// INFRA
	// ======================================================
	repos := infraRepo.NewRepositories(d.DB)
	txManager := infraRepo.NewGormTxManager(d.DB)

	hours := domain.BusinessHours{
		OpenHour:    cfg.WorkStartHour,
		CloseHour:   cfg.WorkEndHour,
		StepMinutes: cfg.SlotStepMinutes,
	}

	// ======================================================
	// USE CASES: ORDERS
	// ======================================================
	createOrderUC := ucOrder.NewCreateOrder(repos, txManager, orderAudit, orderMetrics, d.Log)
	updateOrderUC := ucOrder.NewUpdateOrder(repos, txManager, orderAudit, orderMetrics, d.Log)
	deleteOrderUC := ucOrder.NewDeleteOrder(repos.Orders, orderAudit, d.Log)
	listOrdersUC := ucOrder.NewListOrders(repos.Orders, repos.Services)
	slotsUC := ucOrder.NewGetAvailableSlots(repos.Orders, hours)
	bookingUC := ucOrder.NewCreatePublicBooking(createOrderUC, d.Idempotency, cache.DefaultTTL, d.Log)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, cfg, d.Log)
	orderHandler := handlers.NewOrderHandler(createOrderUC, updateOrderUC, deleteOrderUC, listOrdersUC, d.Log)
	publicHandler := handlers.NewPublicHandler(d.DB, slotsUC, bookingUC, d.Log)
	serviceHandler := handlers.NewServiceHandler(d.DB, d.Log)
	clientHandler := handlers.NewClientHandler(d.DB, d.Log)
	carHandler := handlers.NewCarHandler(d.DB, d.Log)
	carMakeHandler := handlers.NewCarMakeHandler(d.DB, d.Log)
	mediaHandler := handlers.NewMediaHandler(d.Uploader, d.Log)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB, d.Log)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/available-slots/", publicHandler.AvailableSlots)
			publicAPI.POST("/booking/", publicHandler.Booking)
			publicAPI.GET("/services-list/", publicHandler.Services)
		}

		api.POST("/auth/login/", authHandler.Login)

		// ------------------------------
		// STAFF
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.GET("/auth/me/", authHandler.Me)

			staff := secured.Group("/")
			staff.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleMaster))
			{
				staff.GET("/orders/", orderHandler.List)
				staff.GET("/services/list/", serviceHandler.List)
				staff.GET("/clients/", clientHandler.List)
				staff.GET("/cars/", carHandler.List)
				staff.GET("/cars/client/:client_id", carHandler.ListByClient)
				staff.GET("/car-makes/", carMakeHandler.List)
			}

			managers := secured.Group("/")
			managers.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
			{
				managers.POST("/orders/create/", orderHandler.Create)
				managers.PUT("/orders/update/:id", orderHandler.Update)
				managers.DELETE("/orders/delete/:id", orderHandler.Delete)

				managers.POST("/services/create/", serviceHandler.Create)
				managers.PUT("/services/update/:id", serviceHandler.Update)
				managers.DELETE("/services/delete/:id", serviceHandler.Delete)

				managers.POST("/clients/create/", clientHandler.Create)

				managers.POST("/cars/create/", carHandler.Create)
				managers.PUT("/cars/update/:id", carHandler.Update)
				managers.DELETE("/cars/delete/:id", carHandler.Delete)

				managers.POST("/car-makes/create/", carMakeHandler.Create)

				managers.POST("/media/upload/", mediaHandler.Upload)
			}

			admins := secured.Group("/")
			admins.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admins.GET("/employees/", authHandler.ListEmployees)
				admins.POST("/employees/create/", authHandler.CreateEmployee)
				admins.GET("/audit-logs/", auditLogsHandler.List)
			}
		}
	}
}

// NewEngine builds gin with recovery and no default logger.
func NewEngine(env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.RedirectTrailingSlash = true
	r.HandleMethodNotAllowed = true
	return r
}

// ShutdownTimeout converts the configured seconds.
func ShutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.ShutdownTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(cfg.ShutdownTimeoutSec) * time.Second
}
