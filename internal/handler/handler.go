package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"gamevault/backend/internal/account"
	"gamevault/backend/internal/apperr"
	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/cart"
	"gamevault/backend/internal/catalog"
	"gamevault/backend/internal/chat"
	"gamevault/backend/internal/checkout"
	"gamevault/backend/internal/friendship"
	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/payment"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the handlers are wired to.
type Dependencies struct {
	DB            *gorm.DB
	Carts         cart.Store
	Gateway       payment.Gateway
	Currency      string
	PublicBaseURL string
}

var (
	db          *gorm.DB
	accounts    *account.Service
	friendships *friendship.Service
	chats       *chat.Service
	games       *catalog.Service
	carts       cart.Store
	checkouts   *checkout.Service
	baseURL     string
)

// Configure builds the services behind the handlers. It must run before the
// router serves requests.
func Configure(deps Dependencies) {
	db = deps.DB
	accounts = account.NewService(deps.DB)
	friendships = friendship.NewService(deps.DB)
	chats = chat.NewService(deps.DB)
	games = catalog.NewService(deps.DB)
	carts = deps.Carts
	checkouts = checkout.NewService(deps.DB, deps.Carts, deps.Gateway, deps.Currency)
	baseURL = strings.TrimRight(deps.PublicBaseURL, "/")
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

// respondError answers with the status and message err maps to. Internal
// errors are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logging.Log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"error":  err,
		}).Error("request failed")
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

// respondBindError answers a failed ShouldBind* with 400.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.Message(apperr.FromValidation(err))})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}

// currentUserID returns the authenticated user. Routes using it sit behind
// AuthMiddleware.
func currentUserID(c *gin.Context) uint {
	id, _ := auth.CurrentUserID(c)
	return id
}

// idParam parses a positive numeric path parameter, answering 400 when it is
// not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// queryInt reads an integer query parameter, falling back to def.
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// parseCursor reads the polling cursor from since or last_time. Values that
// do not parse are ignored, which returns the full history.
func parseCursor(c *gin.Context) *time.Time {
	raw := c.Query("since")
	if raw == "" {
		raw = c.Query("last_time")
	}
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil
	}
	return &t
}
