package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/games/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/games/:id", "200"))
	for _, path := range []string{"/games/1", "/games/2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/games/:id", "200"))

	assert.Equal(t, float64(2), after-before)
}

func TestRecordFriendshipTransition(t *testing.T) {
	before := testutil.ToFloat64(friendshipTransitions.WithLabelValues("accepted"))
	RecordFriendshipTransition("accepted")
	assert.Equal(t, before+1, testutil.ToFloat64(friendshipTransitions.WithLabelValues("accepted")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordMessagePosted()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gamevault_chat_messages_posted_total")
}
