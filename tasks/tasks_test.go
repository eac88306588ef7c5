package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/test"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

func solidPNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	worker   *Worker
	users    *test.MemoryUserStore
	clothes  *test.MemoryClothingStore
	analyzer *test.AnalyzerMock
	notifier *test.NotifierMock
	owner    models.UserAccount
}

func newFixture(t *testing.T) *fixture {
	users := test.NewMemoryUserStore()
	clothes := test.NewMemoryClothingStore()
	analyzer := &test.AnalyzerMock{Analysis: services.ClothingAnalysis{
		Name:         "Denim jacket",
		Category:     "outerwear",
		PrimaryColor: "blue",
		Style:        "casual",
		Material:     "denim",
		Seasons:      []string{"spring", "autumn"},
		Occasions:    []string{"daily", "casual"},
		Confidence:   0.9,
	}}
	notifier := &test.NotifierMock{}
	w := NewWorker(clothes, users, test.AWSProviderMock{}, analyzer, notifier)
	photo := solidPNG(t, color.NRGBA{30, 40, 160, 255})
	w.Download = func(context.Context, string) ([]byte, error) { return photo, nil }
	return &fixture{
		worker:   w,
		users:    users,
		clothes:  clothes,
		analyzer: analyzer,
		notifier: notifier,
		owner:    users.Add(models.UserAccount{Name: "Lin", Email: "lin@example.com", ReceiveNotifications: true}),
	}
}

func (f *fixture) addClothing(t *testing.T, c models.Clothing) models.Clothing {
	c.OwnerID = f.owner.ID
	if c.ProcessingStatus == "" {
		c.ProcessingStatus = models.ProcessingPending
	}
	require.NoError(t, f.clothes.Create(context.Background(), &c))
	return c
}

func analysisTask(t *testing.T, id uint) *asynq.Task {
	task, err := NewClothingAnalysisTask(id)
	require.NoError(t, err)
	return task
}

func TestNewClothingAnalysisTask(t *testing.T) {
	task := analysisTask(t, 42)

	assert.Equal(t, TypeClothingAnalysis, task.Type())
	var payload ClothingAnalysisPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, uint(42), payload.ClothingID)
}

func TestClothingAnalysisFillsOnlyEmptyFields(t *testing.T) {
	f := newFixture(t)
	c := f.addClothing(t, models.Clothing{
		Name:     "My favourite jacket",
		Style:    "vintage",
		ImageURL: stringPtr("clothes/jacket.png"),
	})

	err := f.worker.HandleClothingAnalysisTask(context.Background(), analysisTask(t, c.ID))

	require.NoError(t, err)
	got, err := f.clothes.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessingCompleted, got.ProcessingStatus)
	assert.Equal(t, "My favourite jacket", got.Name)
	assert.Equal(t, "vintage", got.Style)
	assert.Equal(t, "outerwear", got.Category)
	assert.Equal(t, "blue", got.PrimaryColor)
	assert.Equal(t, "denim", got.Material)
	assert.Equal(t, `["spring","autumn"]`, got.SuitableSeasons)
	assert.Nil(t, got.ProcessErrorMessage)

	require.Len(t, f.notifier.Sent, 1)
	assert.Equal(t, f.owner.ID, f.notifier.Sent[0].UserID)
	assert.Equal(t, fmt.Sprint(c.ID), f.notifier.Sent[0].Data["clothing_id"])
}

func TestClothingAnalysisFallsBackToDominantColor(t *testing.T) {
	f := newFixture(t)
	f.analyzer.Analysis = services.DefaultAnalysis()
	c := f.addClothing(t, models.Clothing{ImageURL: stringPtr("clothes/shirt.png")})

	require.NoError(t, f.worker.HandleClothingAnalysisTask(context.Background(), analysisTask(t, c.ID)))

	got, _ := f.clothes.GetByID(context.Background(), c.ID)
	assert.Equal(t, "blue", got.PrimaryColor)
	assert.Equal(t, "other", got.Category)
}

func TestClothingAnalysisRetriesThenFails(t *testing.T) {
	f := newFixture(t)
	f.worker.Download = func(context.Context, string) ([]byte, error) { return nil, errors.New("timeout") }
	c := f.addClothing(t, models.Clothing{ImageURL: stringPtr("clothes/a.png")})
	ctx := context.Background()

	for attempt := 1; attempt < models.MaxProcessRetries; attempt++ {
		err := f.worker.HandleClothingAnalysisTask(ctx, analysisTask(t, c.ID))
		require.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
		got, _ := f.clothes.GetByID(ctx, c.ID)
		assert.Equal(t, models.ProcessingPending, got.ProcessingStatus)
		assert.Equal(t, attempt, got.ProcessRetryTimes)
	}

	err := f.worker.HandleClothingAnalysisTask(ctx, analysisTask(t, c.ID))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	got, _ := f.clothes.GetByID(ctx, c.ID)
	assert.Equal(t, models.ProcessingFailed, got.ProcessingStatus)
	require.NotNil(t, got.ProcessErrorMessage)
	assert.Equal(t, "Failed to download photo", *got.ProcessErrorMessage)
	assert.Empty(t, f.notifier.Sent)
}

func TestClothingAnalysisWithoutPhotoFailsImmediately(t *testing.T) {
	f := newFixture(t)
	c := f.addClothing(t, models.Clothing{Name: "No photo"})

	err := f.worker.HandleClothingAnalysisTask(context.Background(), analysisTask(t, c.ID))

	assert.ErrorIs(t, err, asynq.SkipRetry)
	got, _ := f.clothes.GetByID(context.Background(), c.ID)
	assert.Equal(t, models.ProcessingFailed, got.ProcessingStatus)
	assert.Zero(t, f.analyzer.Calls)
}

func TestClothingAnalysisBlockedContent(t *testing.T) {
	f := newFixture(t)
	f.analyzer.Err = fmt.Errorf("%w: HARM_CATEGORY", services.ErrContentBlocked)
	c := f.addClothing(t, models.Clothing{ImageURL: stringPtr("clothes/a.png")})

	err := f.worker.HandleClothingAnalysisTask(context.Background(), analysisTask(t, c.ID))

	assert.ErrorIs(t, err, asynq.SkipRetry)
	got, _ := f.clothes.GetByID(context.Background(), c.ID)
	assert.Equal(t, models.ProcessingFailed, got.ProcessingStatus)
}

func TestClothingAnalysisSkipsDeletedAndCompleted(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.worker.HandleClothingAnalysisTask(context.Background(), analysisTask(t, 999)))

	c := f.addClothing(t, models.Clothing{ImageURL: stringPtr("clothes/a.png"), ProcessingStatus: models.ProcessingCompleted})
	assert.NoError(t, f.worker.HandleClothingAnalysisTask(context.Background(), analysisTask(t, c.ID)))
	assert.Zero(t, f.analyzer.Calls)

	bad := asynq.NewTask(TypeClothingAnalysis, []byte("{"))
	assert.ErrorIs(t, f.worker.HandleClothingAnalysisTask(context.Background(), bad), asynq.SkipRetry)
}

func TestWardrobeDigestNotifiesUsersWithUnwornItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addClothing(t, models.Clothing{Name: "Tee"})
	f.addClothing(t, models.Clothing{Name: "Jeans"})

	allWorn := f.users.Add(models.UserAccount{Name: "Worn", Email: "worn@example.com"})
	worn := models.Clothing{Name: "Coat", OwnerID: allWorn.ID, UsageCount: 2}
	require.NoError(t, f.clothes.Create(ctx, &worn))

	banned := f.users.Add(models.UserAccount{Name: "Banned", Email: "banned@example.com", Banned: true})
	require.NoError(t, f.clothes.Create(ctx, &models.Clothing{Name: "Hat", OwnerID: banned.ID}))

	require.NoError(t, f.worker.HandleWardrobeDigestTask(ctx, NewWardrobeDigestTask()))

	require.Len(t, f.notifier.Sent, 1)
	sent := f.notifier.Sent[0]
	assert.Equal(t, f.owner.ID, sent.UserID)
	assert.Contains(t, sent.Body, "2 items")
	assert.Equal(t, "2", sent.Data["unworn"])
}

func TestRegisterRoutesTaskTypes(t *testing.T) {
	f := newFixture(t)
	mux := asynq.NewServeMux()
	f.worker.Register(mux)

	h, pattern := mux.Handler(NewWardrobeDigestTask())
	assert.Equal(t, TypeWardrobeDigest, pattern)
	require.NoError(t, h.ProcessTask(context.Background(), NewWardrobeDigestTask()))
}
