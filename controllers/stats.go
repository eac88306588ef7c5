package controllers

import (
	"math"
	"net/http"
	"sort"

	"wardrobeapi/models"
	"wardrobeapi/recommender"
	"wardrobeapi/stores"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

const mostWornLimit = 5

type WardrobeStatsResponse struct {
	TotalItems           int                `json:"total_items"`
	AverageUsage         float64            `json:"average_usage"`
	CategoryDistribution map[string]int     `json:"category_distribution"`
	ColorDistribution    map[string]int     `json:"color_distribution"`
	StyleDistribution    map[string]int     `json:"style_distribution"`
	MostWornItems        []ClothingResponse `json:"most_worn_items"`
}

type StatsController struct {
	Clothes stores.ClothingStore
}

func (controller *StatsController) StatsRoutes(g *echo.Group) {
	g.GET("/wardrobe", controller.WardrobeStats)
}

// BuildWardrobeStats summarizes a wardrobe. Items are expected in id order so
// ties in the most worn list stay stable.
func BuildWardrobeStats(clothes []models.Clothing) WardrobeStatsResponse {
	stats := WardrobeStatsResponse{
		TotalItems:           len(clothes),
		CategoryDistribution: map[string]int{},
		ColorDistribution:    map[string]int{},
		StyleDistribution:    map[string]int{},
		MostWornItems:        []ClothingResponse{},
	}
	if len(clothes) == 0 {
		return stats
	}

	usage := 0
	for _, item := range clothes {
		usage += item.UsageCount
		stats.CategoryDistribution[string(recommender.ParseCategory(item.Category))]++
		stats.ColorDistribution[orUnknown(item.PrimaryColor)]++
		stats.StyleDistribution[orUnknown(item.Style)]++
	}
	stats.AverageUsage = math.Round(float64(usage)/float64(len(clothes))*10) / 10

	sorted := append([]models.Clothing(nil), clothes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].UsageCount > sorted[j].UsageCount })
	if len(sorted) > mostWornLimit {
		sorted = sorted[:mostWornLimit]
	}
	for _, item := range sorted {
		stats.MostWornItems = append(stats.MostWornItems, toClothingResponse(item, nil))
	}
	return stats
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func (controller *StatsController) WardrobeStats(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	clothes, err := controller.Clothes.ListByOwner(c.Request().Context(), user.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	return c.JSON(http.StatusOK, BuildWardrobeStats(clothes))
}
