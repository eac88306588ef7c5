package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wardrobeapi/logging"
	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/recommender"
	"wardrobeapi/services"
	"wardrobeapi/stores"
	"wardrobeapi/weather"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

// defaultTemperature is assumed when a client sends weather without a temperature.
const defaultTemperature = 20.0

type WeatherIn struct {
	Temperature *float64 `json:"temperature"`
	Main        string   `json:"weather_main"`
	Description string   `json:"weather_description"`
	Humidity    float64  `json:"humidity"`
	WindSpeed   float64  `json:"wind_speed"`
}

func (w WeatherIn) context() recommender.Weather {
	temp := defaultTemperature
	if w.Temperature != nil {
		temp = *w.Temperature
	}
	return recommender.Weather{
		TemperatureC: temp,
		Main:         w.Main,
		Description:  w.Description,
		Humidity:     w.Humidity,
		WindSpeed:    w.WindSpeed,
	}
}

type GenerateRecommendationIn struct {
	Weather    *WeatherIn `json:"weather"`
	City       string     `json:"city" validate:"omitempty,max=100"`
	Occasion   string     `json:"occasion" validate:"omitempty,max=50"`
	StyleLevel *int       `json:"style_level" validate:"omitempty,min=1,max=5"`
}

type RecommendationResponse struct {
	Success bool                       `json:"success"`
	Data    []recommender.RankedOutfit `json:"data"`
	Reason  recommender.Reason         `json:"reason"`
	Message string                     `json:"message,omitempty"`
	Season  recommender.Season         `json:"season,omitempty"`
	Weather *recommender.Weather       `json:"weather,omitempty"`
}

type WeatherResponse struct {
	Weather *weather.Report       `json:"weather"`
	Outfit  weather.OutfitContext `json:"outfit_context"`
}

type SaveFavoriteIn struct {
	OutfitData json.RawMessage `json:"outfit_data" validate:"required"`
	Score      float64         `json:"score" validate:"min=0,max=100"`
}

type FavoriteResponse struct {
	ID         uint        `json:"id"`
	OutfitData interface{} `json:"outfit_data"`
	Score      float64     `json:"score"`
	CreatedAt  string      `json:"created_at"`
}

type RecommendationController struct {
	Clothes   stores.ClothingStore
	Favorites stores.FavoriteStore
	Weather   weather.Provider
	Engine    *recommender.Engine
	URLCache  services.URLCacheServiceProvider
}

func (controller *RecommendationController) RecommendationRoutes(g *echo.Group) {
	g.GET("/weather/:city", controller.GetWeather)
	g.POST("/recommendations/generate", controller.GenerateRecommendations)
	g.POST("/outfits/favorite", controller.SaveFavorite)
	g.GET("/outfits/favorites", controller.ListFavorites)
	g.DELETE("/outfits/favorites/:id", controller.DeleteFavorite)
}

func (controller *RecommendationController) GetWeather(c echo.Context) error {
	city := strings.TrimSpace(c.Param("city"))
	if city == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "City is required"})
	}
	report, err := controller.Weather.Current(c.Request().Context(), city)
	switch {
	case errors.Is(err, weather.ErrCityNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("City %s was not found", city)})
	case errors.Is(err, weather.ErrNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Weather service is not configured"})
	case err != nil:
		logging.Warn().Err(err).Str("city", city).Msg("weather lookup failed")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Weather service is not available, please try again a bit later"})
	}
	return c.JSON(http.StatusOK, WeatherResponse{Weather: report, Outfit: report.OutfitContext()})
}

// resolveWeather prefers client supplied weather, then the requested city,
// then the user's saved location.
func (controller *RecommendationController) resolveWeather(ctx context.Context, req GenerateRecommendationIn, user models.UserAccount) (recommender.Weather, error) {
	if req.Weather != nil {
		return req.Weather.context(), nil
	}
	city := req.City
	if city == "" {
		city = user.Location
	}
	if city == "" {
		return recommender.Weather{}, weather.ErrEmptyCity
	}
	report, err := controller.Weather.Current(ctx, city)
	if err != nil {
		return recommender.Weather{}, err
	}
	return report.Context(), nil
}

func (controller *RecommendationController) GenerateRecommendations(c echo.Context) error {
	started := time.Now()
	var req GenerateRecommendationIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	level := recommender.DefaultStyleLevel
	if user.StyleLevel >= recommender.MinStyleLevel && user.StyleLevel <= recommender.MaxStyleLevel {
		level = user.StyleLevel
	}
	if req.StyleLevel != nil {
		level = *req.StyleLevel
	}

	ctx := c.Request().Context()
	w, err := controller.resolveWeather(ctx, req, user)
	if err != nil {
		logging.Warn().Err(err).Uint("user_id", user.ID).Str("city", req.City).Msg("no weather for recommendation")
		metrics.ObserveRecommendation(string(recommender.ReasonWeatherUnavailable), started)
		return c.JSON(http.StatusOK, RecommendationResponse{
			Success: true,
			Data:    []recommender.RankedOutfit{},
			Reason:  recommender.ReasonWeatherUnavailable,
			Message: "Weather is not available for this location",
		})
	}

	clothes, err := controller.Clothes.ListByOwner(ctx, user.ID)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[User %d] loading wardrobe: %w", user.ID, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	inventory := make([]recommender.ClothingItem, 0, len(clothes))
	for _, item := range clothes {
		inventory = append(inventory, item.ToItem(item.ImageURL))
	}

	result, err := controller.Engine.Recommend(inventory, w, req.Occasion, level)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	metrics.ObserveRecommendation(string(result.Reason), started)
	if result.MalformedAttributes > 0 {
		metrics.MalformedAttributesTotal.Add(float64(result.MalformedAttributes))
	}
	controller.attachImageURLs(ctx, result.Outfits)

	return c.JSON(http.StatusOK, RecommendationResponse{
		Success: true,
		Data:    result.Outfits,
		Reason:  result.Reason,
		Message: result.Message,
		Season:  result.Season,
		Weather: &w,
	})
}

// attachImageURLs swaps stored photo keys for readable URLs. Keys that cannot
// be presigned are dropped from the response.
func (controller *RecommendationController) attachImageURLs(ctx context.Context, outfits []recommender.RankedOutfit) {
	if controller.URLCache == nil {
		return
	}
	for i := range outfits {
		for j := range outfits[i].Items {
			item := &outfits[i].Items[j]
			if item.ImageURL == nil || *item.ImageURL == "" {
				continue
			}
			url, err := controller.URLCache.GetReadURL(ctx, *item.ImageURL)
			if err != nil {
				logging.Warn().Err(err).Uint("clothing_id", item.ID).Msg("outfit image url unavailable")
				item.ImageURL = nil
				continue
			}
			item.ImageURL = &url
		}
	}
}

// normalizeOutfitData unwraps an outfit sent as a JSON encoded string and
// returns it with the clothing ids it references.
func normalizeOutfitData(raw json.RawMessage) (json.RawMessage, []uint, error) {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}
	var outfit struct {
		Items []struct {
			ID uint `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(raw, &outfit); err != nil {
		return nil, nil, err
	}
	ids := make([]uint, 0, len(outfit.Items))
	seen := map[uint]bool{}
	for _, item := range outfit.Items {
		if item.ID == 0 || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		ids = append(ids, item.ID)
	}
	return raw, ids, nil
}

func toFavoriteResponse(f models.FavoriteOutfit) FavoriteResponse {
	var data interface{}
	if err := json.Unmarshal([]byte(f.OutfitData), &data); err != nil {
		data = f.OutfitData
	}
	return FavoriteResponse{
		ID:         f.ID,
		OutfitData: data,
		Score:      f.Score,
		CreatedAt:  f.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (controller *RecommendationController) SaveFavorite(c echo.Context) error {
	var req SaveFavoriteIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	outfitData, ids, err := normalizeOutfitData(req.OutfitData)
	if err != nil || len(ids) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Outfit data must list its items"})
	}

	ctx := c.Request().Context()
	owned, err := controller.Clothes.CountOwned(ctx, user.ID, ids)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to check outfit items"})
	}
	if owned != int64(len(ids)) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Outfit contains clothes that are not in your wardrobe"})
	}

	favorite := models.FavoriteOutfit{
		UserAccountID: user.ID,
		OutfitData:    string(outfitData),
		Score:         req.Score,
	}
	if err := controller.Favorites.Create(ctx, &favorite); err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save favorite"})
	}
	return c.JSON(http.StatusCreated, toFavoriteResponse(favorite))
}

func (controller *RecommendationController) ListFavorites(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	favorites, err := controller.Favorites.ListByUser(c.Request().Context(), user.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch favorites"})
	}
	response := make([]FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		response = append(response, toFavoriteResponse(f))
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *RecommendationController) DeleteFavorite(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid favorite id"})
	}
	err := controller.Favorites.Delete(c.Request().Context(), user.ID, id)
	if errors.Is(err, stores.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Favorite not found"})
	}
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete favorite"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Favorite deleted"})
}
