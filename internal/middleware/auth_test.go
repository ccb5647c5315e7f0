package middleware

import (
	"net/http"
	"net/http/httptest"
	"quizify_backend/internal/config"
	"quizify_backend/internal/model"
	"quizify_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret-middleware-secret"

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(jti string) bool { return r[jti] }

func newRouter(revoked RevocationChecker, roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.JWT.Secret = secret

	r := gin.New()
	chain := []gin.HandlerFunc{AuthMiddleware(cfg, revoked)}
	if len(roles) > 0 {
		chain = append(chain, RoleMiddleware(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c).UserID)
	})
	r.GET("/protected", chain...)
	return r
}

func tokenFor(t *testing.T, role model.UserRole) (string, string) {
	t.Helper()
	token, err := util.GenerateJWT(&model.User{ID: "u-" + string(role), Role: role}, secret, time.Hour)
	require.NoError(t, err)
	claims, err := util.ParseJWT(token, secret)
	require.NoError(t, err)
	return token, claims.ID
}

func get(r *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	token, jti := tokenFor(t, model.Student)

	r := newRouter(revokedSet{})
	assert.Equal(t, http.StatusUnauthorized, get(r, ""))
	assert.Equal(t, http.StatusUnauthorized, get(r, "garbage"))
	assert.Equal(t, http.StatusOK, get(r, token))

	r = newRouter(revokedSet{jti: true})
	assert.Equal(t, http.StatusUnauthorized, get(r, token))
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter(nil, model.Teacher)

	student, _ := tokenFor(t, model.Student)
	teacher, _ := tokenFor(t, model.Teacher)
	admin, _ := tokenFor(t, model.Admin)

	assert.Equal(t, http.StatusForbidden, get(r, student))
	assert.Equal(t, http.StatusOK, get(r, teacher))
	assert.Equal(t, http.StatusOK, get(r, admin))
}
