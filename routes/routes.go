package routes

import (
	"net/http"

	"littlelemon/configs"
	"littlelemon/controllers"
	"littlelemon/middlewares"
	"littlelemon/pkg/resp"
	"littlelemon/repository"
	"littlelemon/services"
	"littlelemon/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Deps struct {
	DB      *gorm.DB
	Config  *configs.Config
	Log     zerolog.Logger
	Hub     *ws.OrderHub
	Limiter middlewares.Limiter
}

// NewRouter builds the engine with the global middleware chain and all routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middlewares.RequestIDMiddleware(),
		middlewares.LoggerMiddleware(d.Log),
		middlewares.RecoverMiddleware(d.Log),
		middlewares.MetricsMiddleware(),
		middlewares.CORSMiddleware(d.Config.CORSOrigins),
	)
	r.NoRoute(func(c *gin.Context) { resp.Error(c, errNotFound) })
	r.NoMethod(func(c *gin.Context) { resp.Error(c, errMethod) })

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	db, cfg := d.DB, d.Config

	// repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	menuRepo := repository.NewMenuItemRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	var notifier services.OrderNotifier = services.NopNotifier{}
	if d.Hub != nil {
		notifier = d.Hub
	}
	limiter := d.Limiter
	if limiter == nil {
		limiter = middlewares.NewMemoryLimiter()
	}

	// services
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	categorySvc := services.NewCategoryService(categoryRepo)
	menuSvc := services.NewMenuService(menuRepo, categoryRepo)
	cartSvc := services.NewCartService(cartRepo, menuRepo)
	orderSvc := services.NewOrderService(db, orderRepo, cartRepo, userRepo, notifier, d.Log)
	groupSvc := services.NewGroupService(userRepo, d.Log)

	// controllers
	authCtl := controllers.NewAuthController(authSvc)
	categoryCtl := controllers.NewCategoryController(categorySvc)
	menuCtl := controllers.NewMenuItemController(menuSvc)
	cartCtl := controllers.NewCartController(cartSvc)
	orderCtl := controllers.NewOrderController(orderSvc)
	managerCtl := controllers.NewGroupController(groupSvc, services.ManagerGroup)
	crewCtl := controllers.NewGroupController(groupSvc, services.DeliveryCrewGroup)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "database unavailable"})
			return
		}
		resp.OK(c, gin.H{"status": "up"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Hub != nil {
		r.GET("/ws/orders", middlewares.WSAuthMiddleware(authSvc), d.Hub.HandleWebSocket)
	}

	// a failed token stays anonymous through the throttle, then gets its 401
	api := r.Group("/",
		middlewares.AuthMiddleware(authSvc),
		middlewares.ThrottleMiddleware(limiter, cfg.ThrottleAnon, cfg.ThrottleUser, d.Log),
		middlewares.RejectInvalidToken(),
	)

	// identity
	api.POST("/auth/users", authCtl.Register)
	api.POST("/auth/token/login", authCtl.Login)

	// public catalogue
	api.GET("/categories", categoryCtl.List)
	api.GET("/menu-items", menuCtl.List)
	api.GET("/menu-items/:id", menuCtl.Get)

	authed := api.Group("/", middlewares.RequireAuth())
	{
		authed.GET("/auth/users/me", authCtl.Me)

		authed.POST("/categories", categoryCtl.Create)
		authed.POST("/menu-items", menuCtl.Create)
		authed.PUT("/menu-items/:id", menuCtl.Replace)
		authed.PATCH("/menu-items/:id", menuCtl.Patch)
		authed.DELETE("/menu-items/:id", menuCtl.Delete)

		authed.GET("/cart/menu-items", cartCtl.List)
		authed.POST("/cart/menu-items", cartCtl.Add)
		authed.DELETE("/cart/menu-items", cartCtl.Clear)

		authed.GET("/orders", orderCtl.List)
		authed.POST("/orders", orderCtl.Place)
		authed.GET("/orders/:id", orderCtl.Get)
		authed.PATCH("/orders/:id", orderCtl.Patch)
		authed.PUT("/orders/:id", orderCtl.Replace)
		authed.DELETE("/orders/:id", orderCtl.Delete)

		authed.GET("/groups/manager/users", managerCtl.List)
		authed.POST("/groups/manager/users", managerCtl.Add)
		authed.DELETE("/groups/manager/users/:id", managerCtl.Remove)

		authed.GET("/groups/delivery-crew/users", crewCtl.List)
		authed.POST("/groups/delivery-crew/users", crewCtl.Add)
		authed.DELETE("/groups/delivery-crew/users/:id", crewCtl.Remove)
	}
}
