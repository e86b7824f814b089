package main

import (
	"context"
	"fmt"
	"net/http"
	"resalelens/internal/ai"
	"resalelens/internal/api"
	"resalelens/internal/config"
	"resalelens/internal/model"
	"resalelens/internal/service"
	"resalelens/internal/storage"
	"resalelens/internal/vision"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		return
	}

	ctx := context.Background()

	annotator, err := vision.NewAnnotator(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise vision annotator")
		return
	}

	analyzer, err := ai.NewGeminiAnalyzer(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise listing analyzer")
		return
	}

	analysisSvc := service.NewAnalysisService(repo, annotator, analyzer,
		time.Duration(cfg.AnalysisTimeoutSeconds)*time.Second)

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, analysisSvc)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// 分析入口保留原有的跨域约定,独立于 /api 组
	analyze := r.Group("/analyze-image", AnalyzeCORSMiddleware())
	analyze.POST("", httpHandler.AnalyzeImage)
	analyze.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusOK) })

	apiGroup := r.Group("/api", CORSMiddleware())

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", httpHandler.Register)
	authGroup.POST("/login", httpHandler.Login)
	authGroup.GET("/me", httpHandler.AuthMiddleware(), httpHandler.Me)

	protected := apiGroup.Group("")
	protected.Use(httpHandler.AuthMiddleware())
	protected.POST("/analyses", httpHandler.CreateAnalysis)
	protected.GET("/analyses", httpHandler.ListAnalyses)
	protected.GET("/analyses/:id", httpHandler.GetAnalysis)
	protected.DELETE("/analyses/:id", httpHandler.DeleteAnalysis)
	protected.GET("/subscription", httpHandler.GetSubscription)
	protected.POST("/subscription/checkout", httpHandler.CreateCheckout)
	protected.POST("/uploads", httpHandler.UploadPhoto)

	apiGroup.GET("/plans", httpHandler.ListPlans)

	if localProvider, ok := store.(storage.LocalBaseDirProvider); ok {
		publicPrefix := strings.TrimSpace(cfg.StoragePublicBaseURL)
		if publicPrefix == "" {
			publicPrefix = "/files"
		}
		if !strings.HasPrefix(publicPrefix, "http://") && !strings.HasPrefix(publicPrefix, "https://") {
			if !strings.HasPrefix(publicPrefix, "/") {
				publicPrefix = "/" + publicPrefix
			}
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logger.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  900 * time.Second,
		WriteTimeout: 900 * time.Second,
		IdleTimeout:  1200 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("服务器启动失败")
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// AnalyzeCORSMiddleware 分析入口沿用原客户端依赖的响应头
func AnalyzeCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
