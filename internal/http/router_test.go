package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	intconfig "voyage/internal/config"
	"voyage/internal/domain"
	"voyage/internal/domain/models"
	"voyage/internal/providers"
	"voyage/internal/services"
)

const testSecret = "router-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testEnv(service string) intconfig.Env {
	return intconfig.Env{
		Service:           service,
		JWTSecret:         testSecret,
		JWTTTL:            time.Hour,
		ShareTTL:          24 * time.Hour,
		VerifyConcurrency: 2,
	}
}

func newTestRouter(t *testing.T, service string, d Deps) *gin.Engine {
	t.Helper()
	d.Logger = zap.NewNop()
	r, err := NewRouter(testEnv(service), d)
	require.NoError(t, err)
	return r
}

func tokenFor(t *testing.T, id int64, role domain.Role) string {
	t.Helper()
	tok, _, err := services.NewTokenService(testSecret, time.Hour).Issue(models.User{ID: id, Role: role, Email: "u@example.com"})
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestNewRouter_UnknownService(t *testing.T) {
	_, err := NewRouter(testEnv("teleport"), Deps{Logger: zap.NewNop()})
	assert.Error(t, err)
}

func TestHealthNoRouteAndRequestID(t *testing.T) {
	r := newTestRouter(t, intconfig.ServiceSleep, Deps{})

	w := do(r, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "sleep", decode(t, w)["service"])

	w = do(r, http.MethodGet, "/api/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "/api/nowhere", body["path"])
	assert.Equal(t, "GET", body["method"])

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	w = do(r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "voyage_http_requests_total")
}

func TestUserRoutes_RegisterLoginAndGuards(t *testing.T) {
	db, mock := newMock(t)
	r := newTestRouter(t, intconfig.ServiceUser, Deps{DB: db})

	w := do(r, http.MethodPost, "/api/auth/register", `{"firstName":"Ada","lastName":"L","email":"ada@example.com","password":"weak"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decode(t, w)["code"])

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	w = do(r, http.MethodPost, "/api/auth/register", `{"firstName":"Ada","lastName":"L","email":"ada@example.com","password":"Abcdefg1!"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	hash, err := bcrypt.GenerateFromPassword([]byte("Abcdefg1!"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = ?")).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "password_hash", "role", "created_at", "updated_at"}).
			AddRow(int64(4), "Ada", "L", "ada@example.com", string(hash), "user", now, now))
	w = do(r, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"Abcdefg1!"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "Bearer "+token, w.Header().Get("Authorization"))
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, w.Body.String(), "password")

	w = do(r, http.MethodGet, "/api/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/users", "", token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/api/users/roles", "", tokenFor(t, 1, domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["user","admin"]`, w.Body.String())

	w = do(r, http.MethodPut, "/api/users/4/role", `{"role":"pilot"}`, tokenFor(t, 1, domain.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRoutes_DeleteMissingUser(t *testing.T) {
	db, mock := newMock(t)
	r := newTestRouter(t, intconfig.ServiceUser, Deps{DB: db})
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = ?")).
		WithArgs(int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := do(r, http.MethodDelete, "/api/users/77", "", tokenFor(t, 1, domain.RoleAdmin))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type stubProvider struct {
	name   string
	offers []models.TravelOffer
	err    error
}

func (p stubProvider) Name() string { return p.name }

func (p stubProvider) Search(context.Context, models.TravelSearch) ([]models.TravelOffer, error) {
	return p.offers, p.err
}

func (p stubProvider) Offer(context.Context, string) (models.TravelOffer, error) {
	return models.TravelOffer{}, p.err
}

func TestTravelRoutes_SearchQueryParsing(t *testing.T) {
	reg := providers.NewRegistry(stubProvider{name: "AF", offers: []models.TravelOffer{{Service: "AF", TravelID: "x1", FromCity: "Paris", ToCity: "Rome"}}})
	r := newTestRouter(t, intconfig.ServiceTravel, Deps{Providers: reg})

	w := do(r, http.MethodGet, "/api/travel/list?from_city=Paris&to_city=Rome&departure=2024-09-01&nb_adults=1&nb_children=0", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "arrival")

	w = do(r, http.MethodGet, "/api/travel/list?from_city=Paris&to_city=Rome&departure=2024-09-01&arrival=2024-09-03&nb_adults=two&nb_children=0", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "nb_adults")

	w = do(r, http.MethodGet, "/api/travel/list?from_city=Paris&to_city=Rome&departure=2024-09-01&arrival=2024-09-03T10:00:00Z&nb_adults=1&nb_children=0&max_price=12,50", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var offers []models.TravelOffer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &offers))
	require.Len(t, offers, 1)
	assert.Equal(t, "x1", offers[0].TravelID)
}

func TestTravelRoutes_AllProvidersDown(t *testing.T) {
	reg := providers.NewRegistry(stubProvider{name: "AF", err: errors.New("boom")})
	r := newTestRouter(t, intconfig.ServiceTravel, Deps{Providers: reg})

	w := do(r, http.MethodGet, "/api/travel/list?from_city=Paris&to_city=Rome&departure=2024-09-01&arrival=2024-09-03&nb_adults=1&nb_children=0", "", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream_error", decode(t, w)["code"])

	w = do(r, http.MethodPut, "/api/verify/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogRoutes_VerifyAndCreate(t *testing.T) {
	db, mock := newMock(t)
	r := newTestRouter(t, intconfig.ServiceSleep, Deps{DB: db})
	in := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "title", "type", "photo_url", "city", "zip", "country", "nb_adults", "nb_children", "avis", "description", "service", "checkin", "checkout", "price"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM sleeps WHERE id = ?")).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(3), "Hotel", "hotel", "", "Paris", "75001", "FR", 2, 1, 4.0, "", "BOOKING", in, in.Add(72*time.Hour), "80.00"))
	w := do(r, http.MethodGet, "/api/sleep/verify/3", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, "Hotel", body["sleep"].(map[string]any)["title"])

	mock.ExpectQuery(regexp.QuoteMeta("FROM sleeps WHERE id = ?")).WithArgs(int64(4)).WillReturnRows(sqlmock.NewRows(cols))
	w = do(r, http.MethodGet, "/api/sleep/verify/4", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/sleep/list?city=Paris&nb_adults=1&nb_children=0&checkin=2024-07-01", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "checkout")

	w = do(r, http.MethodPost, "/api/sleep", `{"title":"Hotel"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/sleep", `{"title":"Hotel"}`, tokenFor(t, 2, domain.RoleUser))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/sleep/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRoutes_MineAndForeignTrip(t *testing.T) {
	db, mock := newMock(t)
	r := newTestRouter(t, intconfig.ServiceTrip, Deps{DB: db})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "owner_id", "name", "description", "start_date", "end_date", "source_trip_id", "share_expires_at", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_id = ? AND share_expires_at IS NULL")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), int64(5), "Rome", "", nil, nil, nil, nil, now, now))
	w := do(r, http.MethodGet, "/api/trips/me", "", tokenFor(t, 5, domain.RoleUser))
	require.Equal(t, http.StatusOK, w.Code)
	var trips []models.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trips))
	require.Len(t, trips, 1)
	assert.Equal(t, "Rome", trips[0].Name)

	mock.ExpectQuery(regexp.QuoteMeta("FROM trips WHERE id = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(9), int64(6), "Oslo", "", nil, nil, nil, nil, now, now))
	w = do(r, http.MethodGet, "/api/trips/9", "", tokenFor(t, 5, domain.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/api/trips", "", tokenFor(t, 5, domain.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/api/trips", `{"name":" "}`, tokenFor(t, 5, domain.RoleUser))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}
