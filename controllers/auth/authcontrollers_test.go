package authcontroller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gabo-code/excelasistSLR-test/config"
	"github.com/Gabo-code/excelasistSLR-test/middlewares"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func setupGate(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("slr2025#"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	config.GateHash = string(hash)
	config.JWT_KEY = []byte("clave-de-prueba")

	router := gin.New()
	router.POST("/gate", Gate)
	router.GET("/protegido", middlewares.GateMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"session": c.GetString(middlewares.SessionKey)})
	})
	return router
}

func TestGateWrongPassword(t *testing.T) {
	router := setupGate(t)
	req := httptest.NewRequest(http.MethodPost, "/gate", strings.NewReader(`{"password":"incorrecta"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("clave incorrecta debía dar 401, dio %d", w.Code)
	}
}

func TestGateTokenRoundTrip(t *testing.T) {
	router := setupGate(t)
	req := httptest.NewRequest(http.MethodPost, "/gate", strings.NewReader(`{"password":"slr2025#"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("gate: %d %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	start := strings.Index(body, `"token":"`)
	if start < 0 {
		t.Fatalf("respuesta sin token: %s", body)
	}
	token := body[start+len(`"token":"`):]
	token = token[:strings.Index(token, `"`)]

	req2 := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req2.Header.Set("Authorization", "Bearer "+token)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("el token emitido no pasó el middleware: %d %s", w2.Code, w2.Body.String())
	}
	if !strings.Contains(w2.Body.String(), `"session":"`) || strings.Contains(w2.Body.String(), `"session":""`) {
		t.Fatalf("el middleware no dejó el id de sesión: %s", w2.Body.String())
	}
}

func TestProtectedWithoutToken(t *testing.T) {
	router := setupGate(t)
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("sin token debía dar 401, dio %d", w.Code)
	}
}
