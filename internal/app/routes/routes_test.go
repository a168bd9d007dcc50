package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akhaled/studenthub/internal/app/controllers"
	"github.com/akhaled/studenthub/internal/app/repositories"
	"github.com/akhaled/studenthub/internal/app/services"
	"github.com/akhaled/studenthub/internal/db"
	"github.com/akhaled/studenthub/internal/middleware"
	"github.com/akhaled/studenthub/internal/pkg/auth"
	"github.com/akhaled/studenthub/internal/pkg/filestorage"
)

const (
	testAPIKey    = "test-api-key"
	testBodyLimit = 64 * 1024
)

var testDBCounter int

func newTestRouter(t *testing.T) (*gin.Engine, *auth.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDBCounter++
	dsn := fmt.Sprintf("file:routetest%d?mode=memory&cache=shared", testDBCounter)

	database, err := db.NewSQLite(dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	storage, err := filestorage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	repos := repositories.NewRepositories(database)
	authService := services.NewAuthService(repos.UserRepository)
	studentService := services.NewStudentService(repos.StudentRepository, storage)

	sessions := auth.NewSessionService(auth.SessionConfig{
		SecretKey:  "route-test-secret",
		Expiration: time.Hour,
		Issuer:     "test",
	})

	baseURL := "http://localhost:8080"
	router := gin.New()
	router.Use(middleware.MaxBodySize(testBodyLimit))
	router.LoadHTMLGlob("../../../web/templates/*.html")

	SetupRouter(
		router,
		controllers.NewAuthController(authService, sessions),
		controllers.NewStudentPageController(studentService),
		controllers.NewStudentAPIController(studentService, baseURL),
		controllers.NewDocsController(baseURL),
		middleware.NewAuthMiddleware(sessions, testAPIKey),
	)

	return router, sessions
}

func doJSON(t *testing.T, router *gin.Engine, method, path, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, apiKey)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return envelope
}

func TestAPIRejectsMissingOrWrongKey(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{"GET", "/api/students"},
		{"GET", "/api/students/1"},
		{"POST", "/api/students"},
		{"PUT", "/api/students/1"},
		{"DELETE", "/api/students/1"},
		{"GET", "/api/stats"},
	}

	for _, p := range paths {
		for _, key := range []string{"", "wrong-key"} {
			rec := doJSON(t, router, p.method, p.path, key, "")
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("%s %s with key %q: status %d, want 401", p.method, p.path, key, rec.Code)
				continue
			}
			envelope := decodeEnvelope(t, rec)
			if envelope["success"] != false {
				t.Errorf("%s %s: expected success=false, got %v", p.method, p.path, envelope["success"])
			}
		}
	}
}

func TestAPIDocsIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/api/docs", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}

func TestAPIStudentLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	// Create.
	rec := doJSON(t, router, "POST", "/api/students", testAPIKey,
		`{"name": "Alice", "age": 21, "city": "Cairo"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != true {
		t.Fatalf("create: expected success=true, got %v", envelope)
	}
	data := envelope["data"].(map[string]interface{})
	id := int64(data["id"].(float64))

	// List contains the new student.
	rec = doJSON(t, router, "GET", "/api/students", testAPIKey, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	envelope = decodeEnvelope(t, rec)
	if envelope["count"] != float64(1) {
		t.Fatalf("list: count = %v, want 1", envelope["count"])
	}

	// Partial update keeps untouched fields.
	rec = doJSON(t, router, "PUT", fmt.Sprintf("/api/students/%d", id), testAPIKey,
		`{"city": "Alexandria"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", rec.Code, rec.Body.String())
	}
	envelope = decodeEnvelope(t, rec)
	data = envelope["data"].(map[string]interface{})
	if data["name"] != "Alice" || data["age"] != float64(21) || data["city"] != "Alexandria" {
		t.Fatalf("update: unexpected data %v", data)
	}

	// Stats reflect the single record.
	rec = doJSON(t, router, "GET", "/api/stats", testAPIKey, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status %d", rec.Code)
	}
	envelope = decodeEnvelope(t, rec)
	stats := envelope["data"].(map[string]interface{})
	if stats["total_students"] != float64(1) || stats["average_age"] != float64(21) {
		t.Fatalf("stats: unexpected data %v", stats)
	}

	// Delete, then the record is gone.
	rec = doJSON(t, router, "DELETE", fmt.Sprintf("/api/students/%d", id), testAPIKey, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = doJSON(t, router, "GET", fmt.Sprintf("/api/students/%d", id), testAPIKey, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", rec.Code)
	}
}

func TestAPICreateRequiresName(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/students", testAPIKey, `{"age": 21}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400; body %s", rec.Code, rec.Body.String())
	}
}

func TestAPIRejectsBadStudentID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/api/students/abc", testAPIKey, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	// Declared length over the cap is rejected before any parsing.
	big := bytes.Repeat([]byte("a"), testBodyLimit+1)
	req := httptest.NewRequest("POST", "/api/students", bytes.NewReader(big))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req.Header.Set(middleware.APIKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("declared oversized body: status %d, want 413", rec.Code)
	}

	// A body with no declared length trips the reader cap mid-parse.
	payload := `{"name": "` + strings.Repeat("a", testBodyLimit+1) + `"}`
	req = httptest.NewRequest("POST", "/api/students", io.MultiReader(strings.NewReader(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.APIKeyHeader, testAPIKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("undeclared oversized body: status %d, want 413", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("OPTIONS", "/api/students", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", middleware.APIKeyHeader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight: status %d, want 204", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", origin)
	}
}

func TestCORSHeaderOnAPIResponse(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/students", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set(middleware.APIKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", origin)
	}
}

func TestUIRedirectsWithoutSession(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/", "/add", "/edit/1", "/logout"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Errorf("GET %s: status %d, want 302", path, rec.Code)
			continue
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("GET %s: redirected to %q, want /login", path, loc)
		}
	}
}

func TestUIAcceptsValidSession(t *testing.T) {
	router, sessions := newTestRouter(t)

	token, err := sessions.Issue(1, "alice")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "alice") {
		t.Error("expected the page to greet the logged-in user")
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	form := url.Values{"username": {"alice"}, "password": {"password123"}}

	req := httptest.NewRequest("POST", "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("register: status %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("register: redirected to %q, want /login", loc)
	}

	req = httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("login: status %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("login: redirected to %q, want /", loc)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("expected a session cookie after login")
	}

	// The issued cookie opens the student list.
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(sessionCookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("index with session: status %d, want 200", rec.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	register := url.Values{"username": {"alice"}, "password": {"correct"}}
	req := httptest.NewRequest("POST", "/register", strings.NewReader(register.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("register: status %d", rec.Code)
	}

	login := url.Values{"username": {"alice"}, "password": {"wrong"}}
	req = httptest.NewRequest("POST", "/login", strings.NewReader(login.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("login: status %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("login: redirected to %q, want back to /login", loc)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			t.Fatal("expected no session cookie on failed login")
		}
	}
}

func TestUIRejectsTamperedSession(t *testing.T) {
	router, _ := newTestRouter(t)

	other := auth.NewSessionService(auth.SessionConfig{
		SecretKey:  "different-secret",
		Expiration: time.Hour,
		Issuer:     "test",
	})
	token, err := other.Issue(1, "mallory")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirected to %q, want /login", loc)
	}
}
