package test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"time"

	"wardrobeapi/services"
	"wardrobeapi/weather"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hibiken/asynq"
)

// DefaultJWTSecret signs tokens when JWT_SECRET is unset.
const DefaultJWTSecret = "test-secret"

func JWTSecret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return DefaultJWTSecret
}

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	var body string
	if param != nil {
		body = JsonString(param)
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(JWTSecret()))
	if err != nil {
		panic(fmt.Sprintf("signing user token for %s: %v", userPk, err))
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewRefString(data string) *string {
	return &data
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, fileName string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, fileKey string) (string, error) {
	if awsService.MockUrl != "" {
		return awsService.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/read/%s", fileKey), nil
}

func (awsService AWSProviderMock) UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error) {
	return 204, nil
}

// URLCacheMock presigns without caching. Keys listed in Fail return an error.
type URLCacheMock struct {
	Fail map[string]bool
}

func (m URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	if m.Fail[objectKey] {
		return "", errors.New("presign failed")
	}
	return "https://cdn.example.com/" + objectKey, nil
}

// WeatherProviderMock serves fixed reports per resolved city.
type WeatherProviderMock struct {
	Reports map[string]weather.Report
	Err     error
}

func (m WeatherProviderMock) Current(ctx context.Context, city string) (*weather.Report, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if strings.TrimSpace(city) == "" {
		return nil, weather.ErrEmptyCity
	}
	r, ok := m.Reports[weather.CacheKey(city)]
	if !ok {
		return nil, weather.ErrCityNotFound
	}
	return &r, nil
}

// EnqueuerMock records enqueued tasks.
type EnqueuerMock struct {
	mu    sync.Mutex
	Tasks []*asynq.Task
	Err   error
}

func (m *EnqueuerMock) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.Tasks = append(m.Tasks, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(m.Tasks)), Type: task.Type()}, nil
}

func (m *EnqueuerMock) Enqueued() []*asynq.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*asynq.Task(nil), m.Tasks...)
}

type AnalyzerMock struct {
	Analysis services.ClothingAnalysis
	Err      error
	Calls    int
}

func (m *AnalyzerMock) AnalyzeClothing(ctx context.Context, filePath string) (services.ClothingAnalysis, error) {
	m.Calls++
	if m.Err != nil {
		return services.ClothingAnalysis{}, m.Err
	}
	return m.Analysis, nil
}

type Notification struct {
	UserID uint
	Title  string
	Body   string
	Data   map[string]string
}

type NotifierMock struct {
	mu   sync.Mutex
	Sent []Notification
}

func (m *NotifierMock) Notify(ctx context.Context, userID uint, title, body string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Notification{UserID: userID, Title: title, Body: body, Data: data})
	return nil
}
