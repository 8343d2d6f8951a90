package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gamevault/backend/internal/config"
	"gamevault/backend/internal/database"
	"gamevault/backend/internal/database/dbtest"
	"gamevault/backend/internal/models"
	"gamevault/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	prevCfg, prevDB := config.AppConfig, database.DB
	config.AppConfig = &config.Config{JWTSecret: "test-secret", JWTTTLHours: 1}
	database.DB = dbtest.New(t)
	t.Cleanup(func() {
		config.AppConfig = prevCfg
		database.DB = prevDB
	})
}

func do(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func echoUser(c *gin.Context) {
	id, ok := CurrentUserID(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok})
}

func TestAuthMiddleware(t *testing.T) {
	setup(t)
	r := gin.New()
	r.GET("/", AuthMiddleware(), echoUser)

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "garbage").Code)

	token, err := jwt.GenerateToken(7)
	require.NoError(t, err)
	w := do(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"ok":true}`, w.Body.String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	setup(t)
	r := gin.New()
	r.GET("/", OptionalAuthMiddleware(), echoUser)

	w := do(r, "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"ok":false}`, w.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	setup(t)
	admin := models.User{Username: "root", PasswordHash: "x", Role: models.RoleAdmin}
	user := models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, database.DB.Create(&admin).Error)
	require.NoError(t, database.DB.Create(&user).Error)

	r := gin.New()
	r.GET("/", AuthMiddleware(), AdminMiddleware(), echoUser)

	adminToken, err := jwt.GenerateToken(admin.ID)
	require.NoError(t, err)
	userToken, err := jwt.GenerateToken(user.ID)
	require.NoError(t, err)
	ghostToken, err := jwt.GenerateToken(999)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(r, adminToken).Code)
	assert.Equal(t, http.StatusForbidden, do(r, userToken).Code)
	assert.Equal(t, http.StatusNotFound, do(r, ghostToken).Code)
}
