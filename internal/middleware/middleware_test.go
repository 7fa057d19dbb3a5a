package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/testutil"
	"fintrack/internal/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(testutil.TestJWTSecret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	return r
}

func doRequest(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := parseBody(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	code, _ := errObj["code"].(string)
	return code
}

func signWith(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	valid := testutil.NewAccessToken(t, testutil.TestJWTSecret, userID, time.Hour)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid_token", "Bearer " + valid, http.StatusOK},
		{"missing_header", "", http.StatusUnauthorized},
		{"wrong_scheme", "Basic " + valid, http.StatusUnauthorized},
		{"empty_token", "Bearer ", http.StatusUnauthorized},
		{"garbage_token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired_token", "Bearer " + testutil.NewAccessToken(t, testutil.TestJWTSecret, userID, -time.Minute), http.StatusUnauthorized},
		{"wrong_secret", "Bearer " + testutil.NewAccessToken(t, "other-secret", userID, time.Hour), http.StatusUnauthorized},
		{"non_uuid_subject", "Bearer " + testutil.NewAccessToken(t, testutil.TestJWTSecret, "42", time.Hour), http.StatusUnauthorized},
		{"no_expiry", "Bearer " + signWith(t, jwt.SigningMethodHS256, []byte(testutil.TestJWTSecret), jwt.RegisteredClaims{Subject: userID}), http.StatusUnauthorized},
		{"hs512_rejected", "Bearer " + signWith(t, jwt.SigningMethodHS512, []byte(testutil.TestJWTSecret), jwt.RegisteredClaims{Subject: userID, ExpiresAt: future}), http.StatusUnauthorized},
		{"refresh_token_rejected", "Bearer " + signWith(t, jwt.SigningMethodHS256, []byte(testutil.TestJWTSecret), AccessClaims{
			TokenType:        "refresh",
			RegisteredClaims: jwt.RegisteredClaims{Subject: userID, ExpiresAt: future},
		}), http.StatusUnauthorized},
	}

	r := setupAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.header != "" {
				header["Authorization"] = tt.header
			}
			rec := doRequest(r, http.MethodGet, "/me", header)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if code := errorCode(t, rec); code != "UNAUTHORIZED" {
					t.Errorf("expected UNAUTHORIZED, got %s", code)
				}
				return
			}
			if got := parseBody(t, rec)["user_id"]; got != userID {
				t.Errorf("expected user_id %s, got %v", userID, got)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrStorage, errors.New("connection refused")))
	})
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrDuplicateAccount)
	})
	r.GET("/unknown", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/written", func(c *gin.Context) {
		_ = c.Error(errors.New("already handled"))
		c.JSON(http.StatusTeapot, gin.H{"ok": true})
	})

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/app", http.StatusInternalServerError, "STORAGE_ERROR"},
		{"/conflict", http.StatusConflict, "DUPLICATE_ACCOUNT"},
		{"/unknown", http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doRequest(r, http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if code := errorCode(t, rec); code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, code)
			}
		})
	}

	t.Run("response_already_written", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/written", nil)
		if rec.Code != http.StatusTeapot {
			t.Errorf("expected handler status to be kept, got %d", rec.Code)
		}
	})
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("generates_id", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/ping", nil)
		if !uuid.IsValid(rec.Header().Get(RequestIDHeader)) {
			t.Errorf("expected generated request id, got %q", rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("reuses_valid_id", func(t *testing.T) {
		incoming := uuid.New()
		rec := doRequest(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: incoming})
		if got := rec.Header().Get(RequestIDHeader); got != incoming {
			t.Errorf("expected %s, got %s", incoming, got)
		}
	})

	t.Run("replaces_invalid_id", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "<script>"})
		if got := rec.Header().Get(RequestIDHeader); got == "<script>" || !uuid.IsValid(got) {
			t.Errorf("expected a fresh request id, got %q", got)
		}
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://app.example.com"))
	r.GET("/data", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := doRequest(r, http.MethodOptions, "/data", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected preflight 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("unexpected allowed origin %q", got)
	}

	rec = doRequest(r, http.MethodGet, "/data", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
