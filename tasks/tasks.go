package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"wardrobeapi/logging"
	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/recommender"
	"wardrobeapi/services"
	"wardrobeapi/stores"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	TypeClothingAnalysis = "clothing:analyze"
	TypeWardrobeDigest   = "wardrobe:digest"

	QueueAnalysis = "analysis"
	QueueDefault  = "default"
)

type ClothingAnalysisPayload struct {
	ClothingID uint `json:"clothing_id"`
}

// Enqueuer is the part of *asynq.Client the API needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewClothingAnalysisTask(clothingID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ClothingAnalysisPayload{ClothingID: clothingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeClothingAnalysis, payload,
		asynq.Queue(QueueAnalysis),
		asynq.MaxRetry(models.MaxProcessRetries-1),
	), nil
}

func NewWardrobeDigestTask() *asynq.Task {
	return asynq.NewTask(TypeWardrobeDigest, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(1))
}

// Worker holds what the task handlers need. Download defaults to
// services.ReadFileFromUrl.
type Worker struct {
	Clothes  stores.ClothingStore
	Users    stores.UserStore
	Storage  services.AWSServiceProvider
	Analyzer services.ClothingAnalyzer
	Notifier services.Notifier
	Download func(ctx context.Context, url string) ([]byte, error)
	logger   zerolog.Logger
}

func NewWorker(clothes stores.ClothingStore, users stores.UserStore, storage services.AWSServiceProvider,
	analyzer services.ClothingAnalyzer, notifier services.Notifier) *Worker {
	if notifier == nil {
		notifier = services.NopNotifier{}
	}
	return &Worker{
		Clothes:  clothes,
		Users:    users,
		Storage:  storage,
		Analyzer: analyzer,
		Notifier: notifier,
		Download: services.ReadFileFromUrl,
		logger:   logging.Component("tasks"),
	}
}

func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeClothingAnalysis, w.HandleClothingAnalysisTask)
	mux.HandleFunc(TypeWardrobeDigest, w.HandleWardrobeDigestTask)
}

// HandleClothingAnalysisTask labels an uploaded photo. Attributes the owner
// already filled in are kept. Failures are recorded on the row and retried
// until MaxProcessRetries.
func (w *Worker) HandleClothingAnalysisTask(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { metrics.ObserveTask(TypeClothingAnalysis, err) }()

	var payload ClothingAnalysisPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	log := w.logger.With().Uint("clothing_id", payload.ClothingID).Logger()

	clothing, err := w.Clothes.GetByID(ctx, payload.ClothingID)
	if errors.Is(err, stores.ErrNotFound) {
		log.Info().Msg("clothing deleted before analysis")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load clothing %d: %w", payload.ClothingID, err)
	}
	if clothing.ProcessingStatus == models.ProcessingCompleted {
		return nil
	}
	if clothing.ImageURL == nil || *clothing.ImageURL == "" {
		return w.saveProcessingFail(ctx, clothing, "No photo to analyze", false)
	}

	url, err := w.Storage.GetPresignedR2FileReadURL(ctx, *clothing.ImageURL)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Clothing %d] presign read url: %w", clothing.ID, err))
		return w.saveProcessingFail(ctx, clothing, "Failed to read photo", true)
	}
	imageBytes, err := w.Download(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("photo download failed")
		return w.saveProcessingFail(ctx, clothing, "Failed to download photo", true)
	}
	log.Debug().Int("bytes", len(imageBytes)).Msg("photo downloaded")

	tempPath, err := services.CreateTempFile(imageBytes, filepath.Base(*clothing.ImageURL))
	if err != nil {
		return w.saveProcessingFail(ctx, clothing, "Failed to prepare photo", true)
	}
	defer os.Remove(tempPath)

	analysis, err := w.Analyzer.AnalyzeClothing(ctx, tempPath)
	if err != nil {
		if errors.Is(err, services.ErrContentBlocked) {
			return w.saveProcessingFail(ctx, clothing, "Photo could not be analyzed", false)
		}
		sentry.CaptureException(fmt.Errorf("[Clothing %d] analysis: %w", clothing.ID, err))
		return w.saveProcessingFail(ctx, clothing, "Analysis failed, retrying", true)
	}

	w.applyAnalysis(&clothing, analysis, imageBytes)
	clothing.ProcessingStatus = models.ProcessingCompleted
	clothing.ProcessErrorMessage = nil
	if err := w.Clothes.Save(ctx, &clothing); err != nil {
		sentry.CaptureException(fmt.Errorf("[Clothing %d] save analysis: %w", clothing.ID, err))
		return err
	}
	log.Info().Str("category", clothing.Category).Float64("confidence", analysis.Confidence).Msg("clothing analyzed")

	if err := w.Notifier.Notify(ctx, clothing.OwnerID, "Your item is ready",
		fmt.Sprintf("%s was added to your wardrobe", clothing.Name),
		map[string]string{"type": "clothing_analyzed", "clothing_id": strconv.FormatUint(uint64(clothing.ID), 10)},
	); err != nil {
		log.Warn().Err(err).Msg("analysis push failed")
	}
	return nil
}

// applyAnalysis fills only the attributes the owner left empty.
func (w *Worker) applyAnalysis(c *models.Clothing, a services.ClothingAnalysis, imageBytes []byte) {
	if c.Name == "" {
		c.Name = a.Name
	}
	if c.Category == "" {
		c.Category = a.Category
	}
	if c.PrimaryColor == "" {
		c.PrimaryColor = a.PrimaryColor
		if recommender.NormalizeColor(c.PrimaryColor) == recommender.ColorUnknown {
			family, err := services.DominantColor(imageBytes)
			if err != nil {
				w.logger.Debug().Err(err).Uint("clothing_id", c.ID).Msg("dominant color unavailable")
			} else {
				c.PrimaryColor = string(family)
			}
		}
	}
	if c.Style == "" {
		c.Style = a.Style
	}
	if c.Material == "" {
		c.Material = a.Material
	}
	if c.SuitableSeasons == "" {
		c.SetSeasons(a.Seasons)
	}
	if c.SuitableOccasions == "" {
		c.SetOccasions(a.Occasions)
	}
}

// saveProcessingFail records a failed attempt. Once the item is marked failed
// the returned error wraps asynq.SkipRetry.
func (w *Worker) saveProcessingFail(ctx context.Context, c models.Clothing, msg string, shouldRetry bool) error {
	c.ProcessRetryTimes++
	c.ProcessErrorMessage = services.StrPointer(msg)
	final := !shouldRetry || c.ProcessRetryTimes >= models.MaxProcessRetries
	if final {
		c.ProcessingStatus = models.ProcessingFailed
	} else {
		c.ProcessingStatus = models.ProcessingPending
	}
	if err := w.Clothes.Save(ctx, &c); err != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Clothing %d] saving failed status: %w", c.ID, err))
		return err
	}
	w.logger.Warn().Uint("clothing_id", c.ID).Int("attempt", c.ProcessRetryTimes).Bool("final", final).Msg(msg)
	if final {
		return fmt.Errorf("clothing %d: %s: %w", c.ID, msg, asynq.SkipRetry)
	}
	return fmt.Errorf("clothing %d: %s", c.ID, msg)
}

// HandleWardrobeDigestTask nudges every active user that still has unworn items.
func (w *Worker) HandleWardrobeDigestTask(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { metrics.ObserveTask(TypeWardrobeDigest, err) }()

	users, err := w.Users.ListActive(ctx)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Digest] fetching users: %w", err))
		return err
	}

	sent, failed := 0, 0
	for _, user := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		unworn, err := w.Clothes.CountUnworn(ctx, user.ID)
		if err != nil {
			failed++
			w.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("digest count failed")
			continue
		}
		if unworn == 0 {
			continue
		}
		body := fmt.Sprintf("You have %d items you have not worn yet. Try one today!", unworn)
		if unworn == 1 {
			body = "You have 1 item you have not worn yet. Try it today!"
		}
		if err := w.Notifier.Notify(ctx, user.ID, "Wardrobe digest", body,
			map[string]string{"type": "wardrobe_digest", "unworn": strconv.FormatInt(unworn, 10)},
		); err != nil {
			failed++
			sentry.CaptureException(fmt.Errorf("[Digest] user %d: %w", user.ID, err))
			continue
		}
		sent++
	}
	w.logger.Info().Int("users", len(users)).Int("sent", sent).Int("failed", failed).Msg("wardrobe digest done")
	return nil
}
