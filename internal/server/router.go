package server

import (
	"net/http"
	"time"

	"auction-sync/internal/countdown"
	"auction-sync/internal/server/ws"
	handler "auction-sync/services/auction/handler"
	"auction-sync/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Engine is what the router serves: the handler surface plus the countdown
// lookups used by the stream endpoint.
type Engine interface {
	handler.AuctionServiceInterface
	KnowsLot(lotID string) bool
	Deadline(lotID string) countdown.DeadlineFunc
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(engine Engine, hub *ws.Hub, corsOrigins []string) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(cors.New(corsConfig(corsOrigins)))

	auctionHandler := handler.NewAuctionHandler(engine)

	router.GET("/health", auctionHandler.HealthHandler)

	lots := router.Group("/lots")
	{
		lots.GET("", auctionHandler.ListLotsHandler)
		lots.GET("/:lot_id", auctionHandler.GetLotHandler)
		lots.DELETE("/:lot_id/view", auctionHandler.CloseLotHandler)
		lots.POST("/:lot_id/bids", auctionHandler.PlaceBidHandler)
		lots.POST("/:lot_id/autobid", auctionHandler.SetAutoBidHandler)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/lots", auctionHandler.AdminHandler)
	}

	mutations := router.Group("/mutations")
	{
		mutations.GET("/:key", auctionHandler.GetMutationHandler)
		mutations.DELETE("/:key", auctionHandler.AcknowledgeMutationHandler)
	}

	session := router.Group("/session")
	{
		session.GET("/viewer", auctionHandler.GetViewerHandler)
		session.PUT("/viewer", auctionHandler.SetViewerHandler)
	}

	if hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			hub.ServeEvents(c.Writer, c.Request)
		})
		router.GET("/ws/lots/:lot_id/countdown", func(c *gin.Context) {
			lotID := c.Param("lot_id")
			if !engine.KnowsLot(lotID) {
				utils.JSONError(c, http.StatusNotFound, nil, "lot not found")
				return
			}
			hub.ServeCountdown(c.Writer, c.Request, lotID, engine.Deadline(lotID))
		})
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-Request-Id"},
		ExposeHeaders: []string{"Content-Length", "X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
