package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/thermalytics/thermoinsights/backend/config"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testSessionConfig() *config.SessionConfig {
	return &config.SessionConfig{
		Secret:           "test-secret-key",
		TokenExpireHours: 12,
	}
}

func TestGenerateToken(t *testing.T) {
	cfg := testSessionConfig()

	token, expiresAt, err := GenerateToken("session-1", cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if token == "" {
		t.Error("Expected non-empty token")
	}

	expectedExpiry := time.Now().Add(12 * time.Hour)
	if expiresAt.Before(expectedExpiry.Add(-time.Minute)) || expiresAt.After(expectedExpiry.Add(time.Minute)) {
		t.Errorf("Expiry time %v is not within expected range of %v", expiresAt, expectedExpiry)
	}

	sessionID, err := ParseToken(token, cfg)
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if sessionID != "session-1" {
		t.Errorf("Expected session-1, got %s", sessionID)
	}
}

func TestSessionAuthMiddleware(t *testing.T) {
	cfg := testSessionConfig()

	token, _, err := GenerateToken("session-1", cfg)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	otherSecret, _, _ := GenerateToken("session-1", &config.SessionConfig{Secret: "other", TokenExpireHours: 1})
	expired, _, _ := GenerateToken("session-1", &config.SessionConfig{Secret: cfg.Secret, TokenExpireHours: -1})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"invalid format", token, http.StatusUnauthorized},
		{"invalid token", "Bearer invalid.token.here", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + otherSecret, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(SessionAuth(cfg))
			router.GET("/test", func(c *gin.Context) {
				fromCtx, _ := c.Request.Context().Value(logger.SessionIDKey).(string)
				if fromCtx != GetSessionID(c) {
					t.Errorf("Expected session in request context, got %q", fromCtx)
				}
				c.JSON(http.StatusOK, gin.H{"session_id": GetSessionID(c)})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	cfg := testSessionConfig()
	claims := SessionClaims{
		SessionID: "session-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := ParseToken(token, cfg); err == nil {
		t.Error("Expected HS512 token to be rejected")
	}
}

func TestParseTokenRequiresSession(t *testing.T) {
	cfg := testSessionConfig()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))

	if _, err := ParseToken(token, cfg); err == nil {
		t.Error("Expected token without session to be rejected")
	}
}

func TestGetSessionIDEmpty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if id := GetSessionID(c); id != "" {
		t.Errorf("Expected empty string, got '%s'", id)
	}
}
