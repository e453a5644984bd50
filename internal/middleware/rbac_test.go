package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func roleApp(role string, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals("role", role)
		}
		return c.Next()
	})
	app.Use(guard)
	app.All("/grades", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleAllowsAuthorizedRoles(t *testing.T) {
	app := roleApp("Teacher", RequireRole(RoleAdmin, RoleTeacher))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/grades", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsUnauthorizedRoles(t *testing.T) {
	for _, role := range []string{RoleViewer, ""} {
		app := roleApp(role, RequireRole(RoleAdmin, RoleTeacher))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/grades", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	}
}

func TestRequireWriteRoleOnlyGuardsMutations(t *testing.T) {
	app := roleApp(RoleViewer, RequireWriteRole(RoleAdmin, RoleTeacher))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/grades", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		resp, err := app.Test(httptest.NewRequest(method, "/grades", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode, method)
	}
}
