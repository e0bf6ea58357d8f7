package handlers

import (
	"time"

	"image-steganography/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter registers the API routes, CORS and the metrics endpoint.
func SetupRouter(h *StegoHandler, m *metrics.Metrics, gatherer prometheus.Gatherer, allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics(m))

	config := cors.DefaultConfig()
	config.AllowOrigins = allowOrigins
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	config.ExposeHeaders = []string{"X-Stego-PSNR", "X-Stego-Message", "X-Stego-Capacity", "X-Stego-Header-Width", "Content-Disposition"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	// API Routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)

		stego := api.Group("/stego")
		{
			stego.POST("/insert", h.InsertMessage)
			stego.POST("/extract", h.ExtractMessage)
			stego.POST("/capacity", h.Capacity)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router
}

func requestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start).Seconds())
	}
}
