package main

import (
	"context"
	"time"

	"gamevault/backend/internal/cart"
	"gamevault/backend/internal/config"
	"gamevault/backend/internal/database"
	"gamevault/backend/internal/handler"
	"gamevault/backend/internal/logging"
	"gamevault/backend/internal/payment"
	"gamevault/backend/internal/router"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "gamevault/backend/docs" // This is important for swag to find the generated docs
)

// @title           GameVault API
// @version         1.0
// @description     Storefront, friends and chat API for the GameVault service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.LoadConfig()
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	db := database.Connect(cfg.DatabaseURL)

	handler.Configure(handler.Dependencies{
		DB:            db,
		Carts:         newCartStore(cfg),
		Gateway:       payment.NewStripeGateway(cfg.StripeSecretKey),
		Currency:      cfg.CheckoutCurrency,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	r := router.Setup(cfg)

	logging.Log.Infof("Server is running on :%s", cfg.Port)
	logging.Log.Infof("Swagger UI is available at %s/swagger/index.html", cfg.PublicBaseURL)
	if err := r.Run(":" + cfg.Port); err != nil {
		logging.Log.Fatalf("Server stopped: %v", err)
	}
}

// newCartStore keeps carts in redis when REDIS_ADDR is set and in process
// memory otherwise.
func newCartStore(cfg *config.Config) cart.Store {
	if cfg.RedisAddr == "" {
		logging.Log.Warn("REDIS_ADDR is empty, carts are kept in memory")
		return cart.NewMemoryStore(cfg.SessionTTL())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := cart.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logging.Log.Fatalf("Failed to connect to redis: %v", err)
	}
	return cart.NewRedisStore(client, cfg.SessionTTL())
}
