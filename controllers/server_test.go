package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wardrobeapi/models"
	"wardrobeapi/recommender"
	"wardrobeapi/test"
	"wardrobeapi/weather"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	e         *echo.Echo
	users     *test.MemoryUserStore
	clothes   *test.MemoryClothingStore
	favorites *test.MemoryFavoriteStore
	enqueuer  *test.EnqueuerMock
	urlCache  *test.URLCacheMock
	weather   *test.WeatherProviderMock
	user      models.UserAccount
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		users:     test.NewMemoryUserStore(),
		clothes:   test.NewMemoryClothingStore(),
		favorites: test.NewMemoryFavoriteStore(),
		enqueuer:  &test.EnqueuerMock{},
		urlCache:  &test.URLCacheMock{Fail: map[string]bool{}},
		weather: &test.WeatherProviderMock{Reports: map[string]weather.Report{
			weather.CacheKey("Taipei"): {City: "Taipei", Temperature: 28, Main: "Clear", Humidity: 60, WindSpeed: 2},
		}},
	}
	s.user = s.users.Add(models.UserAccount{Name: "Lin", Email: "lin@example.com", StyleLevel: 3})
	s.e = SetupServer(ServerDeps{
		Users:      s.users,
		Clothes:    s.clothes,
		Favorites:  s.favorites,
		AWSService: test.AWSProviderMock{},
		URLCache:   s.urlCache,
		Weather:    s.weather,
		Engine:     recommender.NewEngine(zerolog.Nop()),
		Enqueuer:   s.enqueuer,
		JWTSecret:  test.JWTSecret(),
	})
	return s
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) authed(method, target string, body interface{}) *httptest.ResponseRecorder {
	return s.do(test.NewJSONAuthRequest(method, target, UIntToStr(s.user.ID), body))
}

func (s *testServer) addClothing(t *testing.T, c models.Clothing) models.Clothing {
	t.Helper()
	if c.OwnerID == 0 {
		c.OwnerID = s.user.ID
	}
	require.NoError(t, s.clothes.Create(t.Context(), &c))
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(test.NewJSONRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(test.NewJSONRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRejectsForeignTokens(t *testing.T) {
	s := newTestServer(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: UIntToStr(s.user.ID)})
	signed, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	req := test.NewJSONRequest(http.MethodGet, "/api/clothing", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := s.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserMiddleware(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(test.NewJSONAuthRequest(http.MethodGet, "/api/clothing", "999", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(test.NewJSONAuthRequest(http.MethodGet, "/api/clothing", "not-a-number", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	banned := s.users.Add(models.UserAccount{Name: "Banned", Email: "b@example.com", Banned: true})
	rec = s.do(test.NewJSONAuthRequest(http.MethodGet, "/api/clothing", UIntToStr(banned.ID), nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserMiddlewareAcceptsNumericSubject(t *testing.T) {
	s := newTestServer(t)
	sign := func(sub interface{}) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub})
		signed, err := token.SignedString([]byte(test.JWTSecret()))
		require.NoError(t, err)
		return signed
	}
	get := func(sub interface{}) int {
		req := test.NewJSONRequest(http.MethodGet, "/api/clothing", nil)
		req.Header.Set("Authorization", "Bearer "+sign(sub))
		return s.do(req).Code
	}

	assert.Equal(t, http.StatusOK, get(s.user.ID))
	assert.Equal(t, http.StatusUnauthorized, get(1.5))
	assert.Equal(t, http.StatusUnauthorized, get(-3))
	assert.Equal(t, http.StatusUnauthorized, get(true))
}

func TestSubjectID(t *testing.T) {
	id, ok := subjectID("42")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	id, ok = subjectID(float64(42))
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []interface{}{"0", "", "abc", 0.0, 2.5, nil} {
		_, ok := subjectID(bad)
		assert.False(t, ok, "sub %v", bad)
	}
}
