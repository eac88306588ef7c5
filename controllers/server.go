package controllers

import (
	"net/http"

	"wardrobeapi/logging"
	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/recommender"
	"wardrobeapi/services"
	"wardrobeapi/stores"
	"wardrobeapi/tasks"
	"wardrobeapi/weather"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// ServerDeps are the collaborators the HTTP layer is built from.
type ServerDeps struct {
	Users      stores.UserStore
	Clothes    stores.ClothingStore
	Favorites  stores.FavoriteStore
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	Weather    weather.Provider
	Engine     *recommender.Engine
	Enqueuer   tasks.Enqueuer
	JWTSecret  string
	// requests per second per client IP, 0 disables the limiter
	RateLimit float64
}

func SetupServer(deps ServerDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("category", models.ValidateCategory)
	e.Validator = &CustomValidator{validator: v}

	e.Use(middleware.Recover())
	e.Use(logging.RequestLogger())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if deps.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(deps.RateLimit))))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api", echojwt.JWT([]byte(deps.JWTSecret)), UserMiddleware(deps.Users))

	clothesController := ClothesController{
		Clothes:    deps.Clothes,
		AWSService: deps.AWSService,
		URLCache:   deps.URLCache,
		Enqueuer:   deps.Enqueuer,
	}
	clothesController.ClothingRoutes(api.Group("/clothing"))

	recommendationController := RecommendationController{
		Clothes:   deps.Clothes,
		Favorites: deps.Favorites,
		Weather:   deps.Weather,
		Engine:    deps.Engine,
		URLCache:  deps.URLCache,
	}
	recommendationController.RecommendationRoutes(api)

	statsController := StatsController{Clothes: deps.Clothes}
	statsController.StatsRoutes(api.Group("/stats"))

	return e
}
