package websocket

import (
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/parv18050212/ai-tutor/internal/pkg/serverutils"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// newTestApp mirrors the server's registration order: the bearer-guarded
// chat group first, the relay after it.
func newTestApp() *fiber.App {
	app := fiber.New()

	api := app.Group("/api")
	chat := api.Group("/chat/v1")
	chat.Use(serverutils.JwtMiddleware)
	chat.Post("", func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })

	h := NewHandler(nil, nopLogger{})
	h.RegisterRoutes(app)

	return app
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestRelayHandshakeBypassesBearerMiddleware(t *testing.T) {
	os.Setenv("JWT_SECRET", "test_secret")
	app := newTestApp()

	// A plain GET without an Authorization header must reach the relay's
	// own upgrade check, not bounce off the chat group's header guard.
	req := httptest.NewRequest("GET", "/ws/chat?token="+signToken(t, "test_secret"), nil)
	res, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, res.StatusCode)
}

func TestRelayRejectsInvalidToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "test_secret")
	app := newTestApp()

	req := httptest.NewRequest("GET", "/ws/chat?token=not-a-jwt", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	res, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestChatGroupStillGuarded(t *testing.T) {
	os.Setenv("JWT_SECRET", "test_secret")
	app := newTestApp()

	req := httptest.NewRequest("POST", "/api/chat/v1", nil)
	res, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}
