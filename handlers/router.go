package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"image-steganography/config"
)

// NewRouter wires the API routes and middleware.
func NewRouter(cfg config.ServerConfig, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(logger.Named("http")))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{
		"X-Stego-PSNR", "X-Stego-Changed-Bits", "X-Stego-Total-Bits", "X-Stego-Capacity",
		"Content-Disposition", RequestIDHeader,
	}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// multipart bodies beyond this spill to disk
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	stegoHandler := NewStegoHandler(logger.Named("stego"), cfg.MaxUploadBytes, cfg.MaxPixels)

	// API Routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", stegoHandler.HealthCheck)

		stego := api.Group("/stego")
		{
			stego.POST("/insert", stegoHandler.InsertMessage)
			stego.POST("/extract", stegoHandler.ExtractMessage)
			stego.POST("/capacity", stegoHandler.Capacity)
		}
	}

	return router
}
