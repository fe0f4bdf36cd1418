package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/slms-api/internal/models"
)

func performWithClaims(t *testing.T, claims *models.JWTClaims, roles ...models.UserRole) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/protected", nil)
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}

	handler := RequireRoles(roles...)
	handler(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return w
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	w := performWithClaims(t, &models.JWTClaims{UserID: "u1", Role: models.RoleMentor}, models.RoleMentor)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesAllowsAnyListedRole(t *testing.T) {
	w := performWithClaims(t, &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}, models.RoleMentor, models.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsWrongRole(t *testing.T) {
	w := performWithClaims(t, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, models.RoleMentor)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	w := performWithClaims(t, nil, models.RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
