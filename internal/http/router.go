package api

import (
	"context"
	"database/sql"
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	intconfig "voyage/internal/config"
	"voyage/internal/domain"
	h "voyage/internal/http/handlers"
	"voyage/internal/http/middleware"
	"voyage/internal/providers"
	"voyage/internal/repositories"
	"voyage/internal/services"
)

// Deps carries the connections one service process runs with. Nil fields
// fall back to what env describes.
type Deps struct {
	Logger    *zap.Logger
	DB        *sql.DB
	Redis     *redis.Client
	Providers *providers.Registry
	Verifier  services.StepVerifier
}

// NewRouter builds the engine for env.Service.
func NewRouter(env intconfig.Env, d Deps) (*gin.Engine, error) {
	if d.Logger == nil {
		d.Logger = zap.L()
	}
	tokens := services.NewTokenService(env.JWTSecret, env.JWTTTL)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger, env.Service),
		middleware.Recovery(d.Logger),
		middleware.CORS(env.AllowedOrigins()),
		middleware.Metrics(env.Service),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		d.Logger.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sys := h.System{Service: env.Service, DB: d.DB}
	api := r.Group("/api")
	api.GET("/health", sys.Health)
	api.GET("/db-check", sys.DBCheck)
	api.GET("/routes", h.Routes)

	authed := middleware.Auth(tokens)
	admin := middleware.RequireRoles(domain.RoleAdmin)

	switch env.Service {
	case intconfig.ServiceUser:
		mountUser(api, services.NewUserService(d.DB, tokens), authed, admin)
	case intconfig.ServiceTrip:
		mountTrip(api, newTripService(env, d), authed, admin)
	case intconfig.ServiceTravel:
		reg := d.Providers
		if reg == nil {
			reg = providers.FromEnv(context.Background(), env)
		}
		mountTravel(api, services.NewTravelService(d.DB, reg), authed, admin)
	case intconfig.ServiceSleep:
		mountCatalog(api, "sleep", h.NewSleepCatalog(services.NewSleepService(d.DB)), authed)
	case intconfig.ServiceEat:
		mountCatalog(api, "eat", h.NewEatCatalog(services.NewEatService(d.DB)), authed)
	case intconfig.ServiceDrink:
		mountCatalog(api, "drink", h.NewDrinkCatalog(services.NewDrinkService(d.DB)), authed)
	case intconfig.ServiceEnjoy:
		mountCatalog(api, "enjoy", h.NewEnjoyCatalog(services.NewEnjoyService(d.DB)), authed)
	default:
		return nil, fmt.Errorf("unknown service %q", env.Service)
	}

	h.SetRouter(r)
	return r, nil
}

func newTripService(env intconfig.Env, d Deps) services.TripService {
	var shares repositories.ShareStore
	if d.Redis != nil {
		shares = repositories.NewRedisShareStore(d.Redis)
	}
	verifier := d.Verifier
	if verifier == nil {
		verifier = services.NewHTTPStepVerifier(env)
	}
	return services.NewTripService(d.DB, shares, verifier, env.ShareTTL, env.VerifyConcurrency)
}

func mountUser(api *gin.RouterGroup, svc services.UserService, authed, admin gin.HandlerFunc) {
	u := h.Users{Svc: svc}

	auth := api.Group("/auth")
	auth.POST("/login", u.Login)
	auth.POST("/register", u.Register)

	users := api.Group("/users", authed)
	users.GET("/me", u.Me)
	users.PATCH("/me", u.UpdateMe)
	users.DELETE("/me", u.DeleteMe)

	users.GET("", admin, u.List)
	users.POST("", admin, u.Create)
	users.GET("/roles", admin, u.Roles)
	users.GET("/:id", admin, u.Get)
	users.PATCH("/:id", admin, u.Update)
	users.PUT("/:id", admin, u.Update)
	users.DELETE("/:id", admin, u.Delete)
	users.PUT("/:id/role", admin, u.SetRole)
	users.DELETE("/:id/role", admin, u.ResetRole)
}

func mountTrip(api *gin.RouterGroup, svc services.TripService, authed, admin gin.HandlerFunc) {
	t := h.Trips{Svc: svc}

	trips := api.Group("/trips", authed)
	trips.GET("", admin, t.List)
	trips.POST("", t.Create)
	trips.GET("/me", t.Mine)
	trips.POST("/share/:id", t.Share)
	trips.POST("/import/:code", t.Import)

	trips.GET("/:id", t.Get)
	trips.PATCH("/:id", t.Update)
	trips.DELETE("/:id", t.Delete)
	trips.POST("/:id/verify", t.Verify)
	trips.GET("/:id/itinerary.pdf", t.Itinerary)

	trips.GET("/:id/steps", t.ListSteps)
	trips.POST("/:id/steps", t.AddStep)
	trips.GET("/:id/steps/:stepId", t.GetStep)
	trips.PATCH("/:id/steps/:stepId", t.UpdateStep)
	trips.DELETE("/:id/steps/:stepId", t.DeleteStep)
}

func mountTravel(api *gin.RouterGroup, svc services.TravelService, authed, admin gin.HandlerFunc) {
	tr := h.Travel{Svc: svc}

	api.PUT("/verify/:id", authed, tr.Verify)

	travel := api.Group("/travel")
	travel.GET("/list", tr.Search)
	travel.GET("", authed, admin, tr.List)
	travel.POST("", authed, tr.Create)
	travel.PUT("/verify/:id", authed, tr.Verify)
	travel.GET("/:id", authed, tr.Get)
}

// catalogRoutes is satisfied by every h.Catalog instantiation.
type catalogRoutes interface {
	Search(*gin.Context)
	List(*gin.Context)
	Get(*gin.Context)
	Verify(*gin.Context)
	Create(*gin.Context)
}

func mountCatalog(api *gin.RouterGroup, resource string, cat catalogRoutes, authed gin.HandlerFunc) {
	g := api.Group("/" + resource)
	g.GET("/list", cat.Search)
	g.GET("", cat.List)
	g.GET("/verify/:id", cat.Verify)
	g.GET("/:id", cat.Get)
	g.POST("", authed, cat.Create)
}
