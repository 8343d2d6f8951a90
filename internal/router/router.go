package router

import (
	"net/http"
	"strings"
	"time"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/config"
	"gamevault/backend/internal/handler"
	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/metrics"
	"gamevault/backend/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id and logs it once it is done.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if uuid.Validate(requestID) != nil {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(requestIDHeader, requestID)

		startTime := time.Now()
		c.Next()

		entry := logging.Log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(startTime).String(),
			"client_ip":  c.ClientIP(),
		})
		if userID, ok := auth.CurrentUserID(c); ok {
			entry = entry.WithField("user_id", userID)
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request completed")
		case status >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

// Setup builds the HTTP engine. handler.Configure must have been called.
func Setup(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), metrics.Middleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health and metrics
	router.GET("/ping", handler.Ping)
	router.GET("/healthz", handler.Healthz)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	apiV1.Use(session.Middleware(cfg.SessionTTL(), isSecure(cfg)))
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
			authRoutes.POST("/logout", auth.AuthMiddleware(), handler.LogoutUser)
		}

		// Public game routes
		gameRoutes := apiV1.Group("/games")
		{
			gameRoutes.GET("", handler.GetGames)
			gameRoutes.GET("/:id", handler.GetGameByID)
			gameRoutes.POST("/:id/reviews", handler.AddReview)
		}

		// Session favorites
		favoriteRoutes := apiV1.Group("/favorites")
		{
			favoriteRoutes.GET("", handler.GetFavorites)
			favoriteRoutes.POST("/:gameID", handler.AddFavorite)
			favoriteRoutes.POST("/:gameID/ajax", handler.AddFavoriteAjax)
			favoriteRoutes.DELETE("/:gameID", handler.RemoveFavorite)
		}

		// Session cart and checkout
		cartRoutes := apiV1.Group("/cart")
		{
			cartRoutes.GET("", handler.GetCart)
			cartRoutes.POST("/:gameID", handler.AddToCart)
			cartRoutes.DELETE("/:gameID", handler.RemoveFromCart)
		}
		apiV1.POST("/checkout", handler.Checkout)
		apiV1.GET("/payment/success", auth.AuthMiddleware(), handler.PaymentSuccess)

		// Protected routes
		protected := apiV1.Group("")
		protected.Use(auth.AuthMiddleware())
		{
			protected.GET("/profile", handler.GetProfile)
			protected.GET("/profile/overview", handler.GetProfileOverview)
			protected.PUT("/profile", handler.UpdateProfile)

			protected.GET("/users", handler.SearchUsers)
			protected.GET("/users/:id", handler.GetUserByID)

			protected.GET("/friends", handler.GetFriends)
			protected.DELETE("/friends/:userID", handler.RemoveFriend)
			protected.GET("/friends/requests", handler.GetFriendRequests)
			protected.POST("/friends/requests/:id", handler.SendFriendRequest)
			protected.POST("/friends/requests/:id/accept", handler.AcceptFriendRequest)
			protected.POST("/friends/requests/:id/reject", handler.RejectFriendRequest)
			protected.POST("/friends/requests/:id/cancel", handler.CancelFriendRequest)

			protected.GET("/chat/:userID/messages", handler.PollChatMessages)
			protected.POST("/chat/:userID/messages", handler.PostChatMessage)
			protected.GET("/messages/:userID", handler.GetMessages)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminGameRoutes := adminRoutes.Group("/games")
			{
				adminGameRoutes.POST("", handler.CreateGame)
				adminGameRoutes.PUT("/:id", handler.UpdateGame)
				adminGameRoutes.DELETE("/:id", handler.DeleteGame)
			}
		}
	}

	return router
}

func isSecure(cfg *config.Config) bool {
	return strings.HasPrefix(cfg.PublicBaseURL, "https://")
}
