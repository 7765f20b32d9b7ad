package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	app := fiber.New()
	app.Post("/api/login", NewAuthHandler("admin", "s3cret").Login)

	tests := []struct {
		name    string
		body    map[string]string
		success bool
	}{
		{
			name:    "valid credentials",
			body:    map[string]string{"username": "admin", "password": "s3cret"},
			success: true,
		},
		{
			name:    "wrong password",
			body:    map[string]string{"username": "admin", "password": "nope"},
			success: false,
		},
		{
			name:    "wrong username",
			body:    map[string]string{"username": "root", "password": "s3cret"},
			success: false,
		},
		{
			name:    "empty body fields",
			body:    map[string]string{},
			success: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, "POST", "/api/login", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.success, body["success"])
		})
	}
}
