package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"mango/internal/ai/component"
	"mango/internal/config"
	"mango/internal/handler"
	authHandler "mango/internal/handler/auth"
	storyHandler "mango/internal/handler/story"
	"mango/internal/pkg/cache"
	"mango/internal/pkg/gemini"
	"mango/internal/pkg/jwt"
	"mango/internal/pkg/mongodb"
	"mango/internal/pkg/storagefactory"
	"mango/internal/pkg/storytools"
	"mango/internal/pkg/storytools/providers"
	authRepo "mango/internal/repository/auth"
	"mango/internal/server/middleware"
	"mango/internal/service"
	storysvc "mango/internal/service/story"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 初始化 MongoDB
	mongoClient, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	// 创建索引
	if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	// 设置路由
	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() error {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 认证配置
	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}

	accessTokenExpiry := s.cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = 24 * time.Hour
	}

	refreshTokenExpiry := s.cfg.Auth.RefreshTokenExpiry
	if refreshTokenExpiry == 0 {
		refreshTokenExpiry = 7 * 24 * time.Hour
	}

	db := s.mongo.Database()

	userRepo := authRepo.NewUserRepo(db)
	refreshTokenRepo := authRepo.NewRefreshTokenRepo(db)
	authSvc := service.NewAuthService(
		userRepo,
		refreshTokenRepo,
		jwtSecret,
		accessTokenExpiry,
		refreshTokenExpiry,
	)
	authHdl := authHandler.NewHandler(authSvc)

	// 故事服务依赖
	storySvc, err := s.buildStoryService(db)
	if err != nil {
		return err
	}
	storyHdl := storyHandler.NewHandler(storySvc)

	jwtUtil := jwt.NewJWT(jwtSecret, accessTokenExpiry)

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		// 认证接口（公开）
		v1.POST("/auth/register", authHdl.Register)
		v1.POST("/auth/login", authHdl.Login)
		v1.POST("/auth/refresh", authHdl.Refresh)
		v1.POST("/auth/logout", authHdl.Logout)
		v1.GET("/auth/me", authHdl.GetMe)

		// 故事接口（需要认证）
		authed := v1.Group("")
		authed.Use(middleware.Auth(jwtUtil))
		{
			authed.POST("/stories", storyHdl.CreateStory)
			authed.GET("/stories", storyHdl.ListStories)
			authed.GET("/stories/:id", storyHdl.GetStory)
			authed.DELETE("/stories/:id", storyHdl.DeleteStory)
			authed.GET("/stories/:id/progress", storyHdl.GetProgress)
			authed.POST("/stories/:id/slides/:index/retry", storyHdl.RetrySlide)
			authed.POST("/fun-facts", storyHdl.GetFunFacts)
		}
	}

	return nil
}

// buildStoryService 组装故事服务及其全部依赖
// LLM 策划走 eino ChatModel，素材生成走 Gemini 客户端，素材落盘走 storage
func (s *Server) buildStoryService(db *mongo.Database) (storysvc.StoryService, error) {
	// 策划 LLM
	chatModel, err := component.NewChatModel(context.Background(), &s.cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	llmProvider := providers.NewEinoProvider(chatModel)
	log.Info().Str("provider", s.cfg.AI.Provider).Str("model", s.cfg.AI.Model).Msg("initialized plan LLM")

	// Gemini 素材生成客户端（配置缺失时回退到 GEMINI_* 环境变量）
	geminiCfg := gemini.ConfigFromEnv()
	if s.cfg.Gemini.APIKey != "" {
		geminiCfg.APIKey = s.cfg.Gemini.APIKey
	}
	if s.cfg.Gemini.BaseURL != "" {
		geminiCfg.BaseURL = s.cfg.Gemini.BaseURL
	}
	if s.cfg.Gemini.ImageModel != "" {
		geminiCfg.ImageModel = s.cfg.Gemini.ImageModel
	}
	if s.cfg.Gemini.VideoModel != "" {
		geminiCfg.VideoModel = s.cfg.Gemini.VideoModel
	}

	imageClient, err := gemini.NewImageClient(geminiCfg, s.cfg.Generation.ImageTimeout)
	if err != nil {
		return nil, fmt.Errorf("create gemini image client: %w", err)
	}
	imageProvider := providers.NewGeminiImageProvider(imageClient)

	var videoProvider storytools.VideoProvider
	if s.cfg.Generation.VideoMode != config.VideoModeDisabled {
		videoClient, err := gemini.NewVideoClient(geminiCfg, s.cfg.Generation.VideoTimeout)
		if err != nil {
			return nil, fmt.Errorf("create gemini video client: %w", err)
		}
		videoProvider = providers.NewGeminiVideoProvider(videoClient)
	}

	// 素材存储
	store, err := storagefactory.NewStorage(&s.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}
	log.Info().Str("type", store.GetStorageType()).Msg("initialized asset storage")

	return storysvc.NewStoryService(
		db,
		llmProvider,
		imageProvider,
		videoProvider,
		store,
		s.redis,
		s.cfg.Generation,
	), nil
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
