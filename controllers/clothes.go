package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/recommender"
	"wardrobeapi/services"
	"wardrobeapi/stores"
	"wardrobeapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

// analysisStaleAfter is how long a pending analysis may go without progress
// before it can be queued again.
var analysisStaleAfter = 15 * time.Minute

type CreateClothingIn struct {
	Name         string   `json:"name" validate:"omitempty,max=100"`
	Description  *string  `json:"description" validate:"omitempty,max=500"`
	Category     string   `json:"category" validate:"omitempty,category"`
	PrimaryColor string   `json:"primary_color" validate:"omitempty,max=50"`
	Style        string   `json:"style" validate:"omitempty,max=50"`
	Material     string   `json:"material" validate:"omitempty,max=50"`
	Seasons      []string `json:"suitable_seasons" validate:"omitempty,max=4,dive,max=30"`
	Occasions    []string `json:"suitable_occasions" validate:"omitempty,max=10,dive,max=30"`
	FileName     *string  `json:"file_name" validate:"omitempty,max=200"`
	// run photo analysis once the upload finishes
	Analyze bool `json:"analyze"`
}

// UpdateClothingIn only touches the fields that are sent non-empty.
type UpdateClothingIn struct {
	Name         string   `json:"name" validate:"omitempty,max=100"`
	Description  *string  `json:"description" validate:"omitempty,max=500"`
	Category     string   `json:"category" validate:"omitempty,category"`
	PrimaryColor string   `json:"primary_color" validate:"omitempty,max=50"`
	Style        string   `json:"style" validate:"omitempty,max=50"`
	Material     string   `json:"material" validate:"omitempty,max=50"`
	Seasons      []string `json:"suitable_seasons" validate:"omitempty,max=4,dive,max=30"`
	Occasions    []string `json:"suitable_occasions" validate:"omitempty,max=10,dive,max=30"`
}

type ClothingResponse struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	Category         string   `json:"category"`
	PrimaryColor     string   `json:"primary_color"`
	Style            string   `json:"style"`
	Material         string   `json:"material"`
	Seasons          []string `json:"suitable_seasons"`
	Occasions        []string `json:"suitable_occasions"`
	UsageCount       int      `json:"usage_count"`
	ProcessingStatus string   `json:"processing_status"`
	ProcessingError  *string  `json:"processing_error,omitempty"`
	Uri              *string  `json:"uri,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type ClothingCreatedResponse struct {
	ClothingResponse ClothingResponse `json:"clothes"`
	FileUploadUrl    string           `json:"file_upload_url,omitempty"`
}

type ClothesListResponse struct {
	Tops        []ClothingResponse `json:"tops"`
	Bottoms     []ClothingResponse `json:"bottoms"`
	Outerwear   []ClothingResponse `json:"outerwear"`
	Shoes       []ClothingResponse `json:"shoes"`
	Accessories []ClothingResponse `json:"accessories"`
	Other       []ClothingResponse `json:"other"`
	Total       int                `json:"total"`
}

type ClothesController struct {
	Clothes    stores.ClothingStore
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	Enqueuer   tasks.Enqueuer
}

func (controller *ClothesController) ClothingRoutes(g *echo.Group) {
	g.GET("", controller.ListClothes)
	g.POST("", controller.CreateClothing)
	g.PUT("/:id", controller.UpdateClothing)
	g.DELETE("/:id", controller.DeleteClothing)
	g.POST("/:id/wear", controller.WearClothing)
	g.POST("/:id/analyze", controller.AnalyzeClothing)
}

func toClothingResponse(item models.Clothing, uri *string) ClothingResponse {
	return ClothingResponse{
		ID:               item.ID,
		Name:             item.Name,
		Description:      item.Description,
		Category:         string(recommender.ParseCategory(item.Category)),
		PrimaryColor:     item.PrimaryColor,
		Style:            item.Style,
		Material:         item.Material,
		Seasons:          tagsOrEmpty(recommender.NormalizeAttribute(item.Seasons()).Tags),
		Occasions:        tagsOrEmpty(recommender.NormalizeAttribute(item.Occasions()).Tags),
		UsageCount:       item.UsageCount,
		ProcessingStatus: item.ProcessingStatus,
		ProcessingError:  item.ProcessErrorMessage,
		Uri:              uri,
		CreatedAt:        item.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        item.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func tagsOrEmpty(tags recommender.TagSet) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (controller *ClothesController) CreateClothing(c echo.Context) error {
	var req CreateClothingIn
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
	hasPhoto := req.FileName != nil && *req.FileName != ""
	if req.Analyze && !hasPhoto {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "A photo is required for analysis"})
	}

	clothing := models.Clothing{
		Name:             req.Name,
		Description:      req.Description,
		PrimaryColor:     req.PrimaryColor,
		Style:            req.Style,
		Material:         req.Material,
		OwnerID:          user.ID,
		ProcessingStatus: models.ProcessingIdle,
	}
	if req.Category != "" {
		clothing.Category = string(recommender.ParseCategory(req.Category))
	}
	clothing.SetSeasons(req.Seasons)
	clothing.SetOccasions(req.Occasions)
	if clothing.Name == "" && !req.Analyze {
		clothing.Name = "New item"
	}
	if clothing.Category == "" && !req.Analyze {
		clothing.Category = string(recommender.CategoryOther)
	}

	ctx := c.Request().Context()
	var uploadUrl string
	if hasPhoto {
		objectKey, err := services.ClothingObjectKey(*req.FileName)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Only jpg, png, heic and webp photos are supported"})
		}
		uploadUrl, err = controller.AWSService.PresignLink(ctx, objectKey)
		if err != nil {
			logging.Error().Err(err).Uint("user_id", user.ID).Msg("presign upload failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error while creating clothes with attachment"})
		}
		clothing.ImageURL = &objectKey
	}
	if req.Analyze {
		clothing.ProcessingStatus = models.ProcessingPending
	}

	if err := controller.Clothes.Create(ctx, &clothing); err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save clothes"})
	}
	// the item is kept even when the task can't be queued; the owner can
	// upload the photo and ask for analysis again
	if req.Analyze {
		if err := controller.enqueueAnalysis(clothing.ID); err != nil {
			if err := controller.markEnqueueFailed(ctx, &clothing); err != nil {
				sentry.CaptureException(err)
			}
		}
	}

	return c.JSON(http.StatusCreated, ClothingCreatedResponse{
		ClothingResponse: toClothingResponse(clothing, nil),
		FileUploadUrl:    uploadUrl,
	})
}

func (controller *ClothesController) enqueueAnalysis(clothingID uint) error {
	task, err := tasks.NewClothingAnalysisTask(clothingID)
	if err != nil {
		sentry.CaptureException(err)
		return err
	}
	info, err := controller.Enqueuer.Enqueue(task)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Clothing %d] enqueue analysis: %w", clothingID, err))
		return err
	}
	logging.Info().Uint("clothing_id", clothingID).Str("task_id", info.ID).Msg("analysis task submitted")
	return nil
}

// markEnqueueFailed leaves the item in a state AnalyzeClothing accepts again.
func (controller *ClothesController) markEnqueueFailed(ctx context.Context, clothing *models.Clothing) error {
	clothing.ProcessingStatus = models.ProcessingFailed
	clothing.ProcessErrorMessage = services.StrPointer("Could not queue analysis, please try again")
	if err := controller.Clothes.Save(ctx, clothing); err != nil {
		return fmt.Errorf("[Clothing %d] saving enqueue failure: %w", clothing.ID, err)
	}
	return nil
}

// loadOwned writes the error response itself when the item is missing.
func (controller *ClothesController) loadOwned(c echo.Context, user models.UserAccount) (models.Clothing, bool, error) {
	id, ok := pathID(c)
	if !ok {
		return models.Clothing{}, false, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid clothes id"})
	}
	clothing, err := controller.Clothes.Get(c.Request().Context(), user.ID, id)
	if errors.Is(err, stores.ErrNotFound) {
		return models.Clothing{}, false, c.JSON(http.StatusNotFound, map[string]string{"error": "Clothes not found"})
	}
	if err != nil {
		sentry.CaptureException(err)
		return models.Clothing{}, false, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	return clothing, true, nil
}

func (controller *ClothesController) UpdateClothing(c echo.Context) error {
	var req UpdateClothingIn
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
	clothing, found, err := controller.loadOwned(c, user)
	if !found {
		return err
	}

	if req.Name != "" {
		clothing.Name = req.Name
	}
	if req.Description != nil && *req.Description != "" {
		clothing.Description = req.Description
	}
	if req.Category != "" {
		clothing.Category = string(recommender.ParseCategory(req.Category))
	}
	if req.PrimaryColor != "" {
		clothing.PrimaryColor = req.PrimaryColor
	}
	if req.Style != "" {
		clothing.Style = req.Style
	}
	if req.Material != "" {
		clothing.Material = req.Material
	}
	if len(req.Seasons) > 0 {
		clothing.SetSeasons(req.Seasons)
	}
	if len(req.Occasions) > 0 {
		clothing.SetOccasions(req.Occasions)
	}

	ctx := c.Request().Context()
	if err := controller.Clothes.Save(ctx, &clothing); err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update clothes"})
	}
	return c.JSON(http.StatusOK, toClothingResponse(clothing, controller.readURL(ctx, clothing)))
}

func (controller *ClothesController) DeleteClothing(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid clothes id"})
	}
	err := controller.Clothes.Delete(c.Request().Context(), user.ID, id)
	if errors.Is(err, stores.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Clothes not found"})
	}
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete clothes"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Clothes deleted"})
}

// WearClothing records that the item was worn once more.
func (controller *ClothesController) WearClothing(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid clothes id"})
	}
	clothing, err := controller.Clothes.IncrementUsage(c.Request().Context(), user.ID, id)
	if errors.Is(err, stores.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Clothes not found"})
	}
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update clothes"})
	}
	return c.JSON(http.StatusOK, toClothingResponse(clothing, nil))
}

// AnalyzeClothing re-runs photo analysis, e.g. after a failed attempt.
func (controller *ClothesController) AnalyzeClothing(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	clothing, found, err := controller.loadOwned(c, user)
	if !found {
		return err
	}
	if clothing.ImageURL == nil || *clothing.ImageURL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "A photo is required for analysis"})
	}
	// a pending row that stopped moving lost its task and may be queued again
	if clothing.ProcessingStatus == models.ProcessingPending && time.Since(clothing.UpdatedAt) < analysisStaleAfter {
		return c.JSON(http.StatusConflict, map[string]string{"error": "Analysis is already in progress"})
	}

	ctx := c.Request().Context()
	clothing.ProcessingStatus = models.ProcessingPending
	clothing.ProcessRetryTimes = 0
	clothing.ProcessErrorMessage = nil
	if err := controller.Clothes.Save(ctx, &clothing); err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update clothes status, please try again"})
	}
	if err := controller.enqueueAnalysis(clothing.ID); err != nil {
		if err := controller.markEnqueueFailed(ctx, &clothing); err != nil {
			sentry.CaptureException(err)
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process clothes, please try again"})
	}
	return c.JSON(http.StatusAccepted, toClothingResponse(clothing, nil))
}

// readURL resolves a photo key through the URL cache and falls back to a
// direct presign when the cache itself fails.
func (controller *ClothesController) readURL(ctx context.Context, item models.Clothing) *string {
	if item.ImageURL == nil || *item.ImageURL == "" {
		return nil
	}
	objectKey := *item.ImageURL
	url, err := controller.URLCache.GetReadURL(ctx, objectKey)
	if err == nil {
		return &url
	}
	logging.Warn().Err(err).Str("object_key", objectKey).Msg("url cache failed, presigning directly")
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("failure_type", "cache_system")
		scope.SetExtra("objectKey", objectKey)
		sentry.CaptureException(err)
	})

	fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, objectKey)
	if fallbackErr != nil {
		logging.Error().Err(fallbackErr).Str("object_key", objectKey).Msg("direct presign failed")
		sentry.CaptureException(fallbackErr)
		return nil
	}
	return &fallbackUrl
}

// populatePresignedClothingImages maps clothes to responses, presigning photo URLs concurrently.
func (controller *ClothesController) populatePresignedClothingImages(ctx context.Context, clothes []models.Clothing) []ClothingResponse {
	if len(clothes) == 0 {
		return []ClothingResponse{}
	}

	var wg sync.WaitGroup
	processed := make([]ClothingResponse, len(clothes))
	for i, clothingItem := range clothes {
		wg.Add(1)
		go func(index int, item models.Clothing) {
			defer wg.Done()
			processed[index] = toClothingResponse(item, controller.readURL(ctx, item))
		}(i, clothingItem)
	}
	wg.Wait()
	return processed
}

func (controller *ClothesController) ListClothes(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	clothes, err := controller.Clothes.ListByOwner(c.Request().Context(), user.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	processed := controller.populatePresignedClothingImages(c.Request().Context(), clothes)

	response := ClothesListResponse{
		Tops:        []ClothingResponse{},
		Bottoms:     []ClothingResponse{},
		Outerwear:   []ClothingResponse{},
		Shoes:       []ClothingResponse{},
		Accessories: []ClothingResponse{},
		Other:       []ClothingResponse{},
		Total:       len(processed),
	}
	for _, resp := range processed {
		switch recommender.Category(resp.Category) {
		case recommender.CategoryTop:
			response.Tops = append(response.Tops, resp)
		case recommender.CategoryBottom:
			response.Bottoms = append(response.Bottoms, resp)
		case recommender.CategoryOuterwear:
			response.Outerwear = append(response.Outerwear, resp)
		case recommender.CategoryShoes:
			response.Shoes = append(response.Shoes, resp)
		case recommender.CategoryAccessory:
			response.Accessories = append(response.Accessories, resp)
		default:
			response.Other = append(response.Other, resp)
		}
	}
	return c.JSON(http.StatusOK, response)
}
