package router

import (
	"context"
	"errors"
	"net/http"

	"currycrave/apps/gateway/handlers/delivery"
	"currycrave/apps/gateway/handlers/middleware"
	"currycrave/pkg/config"
	"currycrave/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Invoke(
		NewRouter,
	),
)

type Params struct {
	fx.In

	middleware.Middleware
	Lifecycle fx.Lifecycle
	Config    config.IConfig
	Logger    logger.Logger
	Delivery  delivery.Handler
}

func NewRouter(params Params) {
	server := http.Server{
		Addr: params.Config.GetString("server.port"),
		Handler: cors.New(cors.Options{
			AllowedHeaders:   []string{"*"},
			AllowedOrigins:   params.Config.GetStringSlice("server.allowed_origins"),
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
		}).Handler(Routes(params.Middleware, params.Delivery)),
	}

	params.Lifecycle.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				params.Logger.Info(ctx, "Starting application")
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						params.Logger.Error(ctx, "Err on ListenAndServe", zap.Error(err))
					}
				}()

				params.Logger.Info(ctx, "Application starting on port", zap.String("port", params.Config.GetString("server.port")))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				params.Logger.Info(ctx, "Application stopped")
				return server.Shutdown(ctx)
			},
		},
	)
}

// Routes builds the gin engine serving the delivery API.
func Routes(mw middleware.Middleware, h delivery.Handler) *gin.Engine {
	r := gin.New()
	baseUrl := "/api/v1/delivery"

	out := r.Group(baseUrl)
	out.Use(mw.Ctx(), gin.Logger(), gin.Recovery())
	{
		out.POST("/validate-pincode", h.ValidatePincode)
		out.GET("/pincode/:pincode", h.GetPincode)
		out.GET("/settings", h.GetSettings)
	}

	admin := r.Group(baseUrl)
	admin.Use(mw.Ctx(), gin.Logger(), gin.Recovery(), mw.Admin())
	{
		admin.POST("/servicable-pincode", h.AddServicablePincode)
		admin.DELETE("/servicable-pincode/:pincode", h.RemoveServicablePincode)
		admin.PUT("/area-settings", h.UpdateAreaSettings)
		admin.GET("/pincodes-in-radius", h.GetPincodesInRadius)
		admin.GET("/scan-nearby-pincodes", h.ScanNearbyPincodes)
	}

	locationGroup := admin.Group("/restaurant-location")
	{
		locationGroup.POST("", h.AddRestaurantLocation)
		locationGroup.DELETE("/:pincode", h.RemoveRestaurantLocation)
		locationGroup.PATCH("/:pincode/toggle", h.ToggleRestaurantLocation)
	}
	admin.PUT("/restaurant-locations", h.SetRestaurantLocations)

	return r
}
