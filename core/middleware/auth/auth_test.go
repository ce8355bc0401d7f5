package auth_test

import (
	"net/http/httptest"
	"testing"

	"access-sync/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: key, Public: []string{"/health"}}))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/locks", func(c *fiber.Ctx) error { return c.SendString("locks") })
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		path   string
		header string
		want   int
	}{
		{name: "Disabled", key: "", path: "/locks", want: 200},
		{name: "MissingKey", key: "s3cret", path: "/locks", want: 401},
		{name: "WrongKey", key: "s3cret", path: "/locks", header: "nope", want: 401},
		{name: "HeaderKey", key: "s3cret", path: "/locks", header: "s3cret", want: 200},
		{name: "QueryKey", key: "s3cret", path: "/locks?api_key=s3cret", want: 200},
		{name: "PublicPath", key: "s3cret", path: "/health", want: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(auth.HeaderName, tt.header)
			}
			resp, err := newApp(tt.key).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
