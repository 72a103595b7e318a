package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"locacar/internal/config"
	"locacar/internal/events"
	h "locacar/internal/http/handlers"
	"locacar/internal/services"
	"locacar/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var customerCols = []string{
	"id", "name", "email", "phone", "tax_id", "password_hash", "birth_date", "address",
	"city", "state", "zip_code", "active", "created_at", "updated_at",
}

var rentalCols = []string{
	"id", "customer_id", "vehicle_id", "start_date", "end_date", "actual_end_date",
	"total_days", "daily_rate", "total_amount", "additional_fees", "late_fee", "fuel_level",
	"mileage_start", "mileage_end", "notes", "return_notes", "status", "payment_status",
	"payment_method", "license_image_path", "created_at", "updated_at",
}

type testServer struct {
	engine  *gin.Engine
	mock    sqlmock.Sqlmock
	handler *h.Handler
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	uploadDir := t.TempDir()
	store, err := storage.NewLocalStore(uploadDir, LicenseURLPrefix)
	require.NoError(t, err)

	auth := services.NewAuthService("test-secret", time.Hour)
	hd := &h.Handler{
		DB:        db,
		Customers: services.CustomerService{DB: db, HashCost: bcrypt.MinCost},
		Vehicles:  services.VehicleService{DB: db},
		Rentals:   services.NewRentalService(db, &events.Recorder{}),
		Receipts:  services.ReceiptService{DB: db},
		Overdue:   services.OverdueService{DB: db},
		Auth:      auth,
		Licenses:  store,
	}
	env := config.Env{UploadDir: uploadDir, CORSOrigins: []string{"http://localhost:8000"}}

	token, _, err := auth.Issue(3, "12345678909")
	require.NoError(t, err)
	return &testServer{engine: NewRouter(env, hd), mock: mock, handler: hd, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/health", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/rentals", "/api/vehicles", "/api/customers", "/api/auth/me"} {
		w := s.do(t, http.MethodGet, path, nil, false)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rentals", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginSetsStrictHttpOnlyCookie(t *testing.T) {
	s := newTestServer(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()

	s.mock.ExpectQuery("SELECT (.+) FROM customers WHERE tax_id = \\?").
		WithArgs("12345678909").
		WillReturnRows(sqlmock.NewRows(customerCols).AddRow(
			3, "Maria Souza", "maria@example.com", nil, "12345678909", string(hash), nil, nil,
			nil, nil, nil, true, now, now,
		))

	w := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"tax_id": "123.456.789-09", "password": "secret"}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotContains(t, w.Body.String(), "password_hash")

	var session *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "access_token" {
			session = ck
		}
	}
	require.NotNil(t, session)
	require.True(t, session.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, session.SameSite)

	claims, err := s.handler.Auth.Parse(session.Value)
	require.NoError(t, err)
	require.EqualValues(t, 3, claims.CustomerID)

	s.mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = \\?").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(customerCols).AddRow(
			3, "Maria Souza", "maria@example.com", nil, "12345678909", string(hash), nil, nil,
			nil, nil, nil, true, now, now,
		))
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(session)
	me := httptest.NewRecorder()
	s.engine.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	s := newTestServer(t)
	s.mock.ExpectQuery("SELECT (.+) FROM customers WHERE tax_id = \\?").
		WillReturnRows(sqlmock.NewRows(customerCols))

	w := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"tax_id": "12345678909", "password": "nope"}, false)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, w.Result().Cookies())
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/auth/logout", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "access_token", cookies[0].Name)
	require.True(t, cookies[0].MaxAge < 0)
}

func TestCreateRentalValidationPayload(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/rentals", map[string]any{
		"customer_id":    3,
		"vehicle_id":     "veh-1",
		"start_date":     "2025-01-05",
		"end_date":       "2025-01-05",
		"mileage_start":  100,
		"payment_method": "PIX",
	}, true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	require.Equal(t, "validation_error", body["code"])
	require.Contains(t, body["message"], "end_date")
	require.NotEmpty(t, body["request_id"])
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestFinishRentalNotActiveIsConflict(t *testing.T) {
	s := newTestServer(t)
	now := time.Now()
	s.mock.ExpectBegin()
	s.mock.ExpectQuery("SELECT (.+) FROM rentals WHERE id = \\? FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(rentalCols).AddRow(
			10, 3, "veh-1", now, now.AddDate(0, 0, 3), now,
			3, "100", "300", "0", "0", 50,
			100, 400, nil, nil, "FINISHED", "PAID",
			"PIX", nil, now, now,
		))
	s.mock.ExpectRollback()

	w := s.do(t, http.MethodPost, "/api/rentals/10/finish", map[string]any{
		"actual_end_date": "2025-01-08",
		"mileage_end":     500,
		"fuel_level":      90,
	}, true)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	require.Contains(t, decode(t, w)["message"], "FINISHED")
	require.NoError(t, s.mock.ExpectationsWereMet())
}

func TestRentalIDMustBeNumeric(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/rentals/abc", nil, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCustomerRejectsBadTaxID(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/customers", map[string]any{
		"name":     "Maria Souza",
		"email":    "maria@example.com",
		"tax_id":   "123",
		"password": "secret",
	}, false)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "taxid")
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("license_file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadLicenseImage(t *testing.T) {
	s := newTestServer(t)
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	body, ctype := multipartUpload(t, "my cnh.png", png)

	req := httptest.NewRequest(http.MethodPost, "/api/rentals/license-images", body)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	url, _ := decode(t, w)["license_url"].(string)
	require.True(t, strings.HasPrefix(url, "/license-images/"), url)
	require.True(t, strings.HasSuffix(url, "_my_cnh.png"), url)

	get := httptest.NewRecorder()
	s.engine.ServeHTTP(get, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, get.Code)
	require.Equal(t, png, get.Body.Bytes())
}

func TestUploadRejectsNonImage(t *testing.T) {
	s := newTestServer(t)
	body, ctype := multipartUpload(t, "cnh.png", []byte("%PDF-1.4 not an image"))

	req := httptest.NewRequest(http.MethodPost, "/api/rentals/license-images", body)
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRoutesListsRegisteredEndpoints(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/routes", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "/api/rentals/:id/finish")
}
