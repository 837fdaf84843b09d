package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salary-parser/app/config"
	"github.com/salary-parser/app/controllers"
	"github.com/salary-parser/app/services"
	"github.com/salary-parser/helpers/utils"
	"github.com/salary-parser/internal/search"
	"github.com/salary-parser/routes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	appCfg, err := config.LoadApp(nil)
	if err != nil {
		panic(err)
	}
	if err := config.Load(appCfg.ParserPath); err != nil {
		panic(err)
	}

	logger, err := utils.NewLogger(appCfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting salary parser api", zap.String("env", appCfg.Env))

	postParser, resolver, err := services.BuildParser(config.C, logger)
	if err != nil {
		logger.Fatal("cannot build parser", zap.Error(err))
	}

	mongoClient, err := initMongoDB(appCfg.MongoURL, logger)
	if err != nil {
		logger.Fatal("cannot connect to mongodb", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("cannot disconnect from mongodb", zap.Error(err))
		}
	}()
	database := mongoClient.Database(appCfg.MongoDB)

	cacheService := initCache(appCfg, database, logger)
	defer cacheService.Close()

	var index *search.RecordIndex
	if appCfg.MeiliURL != "" {
		index, err = search.NewRecordIndex(search.IndexConfig{Host: appCfg.MeiliURL, APIKey: appCfg.MeiliKey}, logger)
		if err != nil {
			logger.Warn("meilisearch unavailable, search index disabled", zap.Error(err))
			index = nil
		}
	}

	postService := services.NewPostService(postParser, cacheService, logger)
	jobsCtx, stopJobCleanup := context.WithCancel(context.Background())
	defer stopJobCleanup()
	postService.StartJobCleanupWorker(jobsCtx, time.Minute, appCfg.JobTTL)
	adminService := services.NewAdminService(database,
		index,
		services.NewRecordStore(database, logger),
		services.NewUnmappedStore(database, logger),
		logger)

	if appCfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, routes.Controllers{
		Post:     controllers.NewPostController(postService, logger),
		Location: controllers.NewLocationController(resolver),
		Comment:  controllers.NewCommentController(services.NewCommentService(logger)),
		Admin:    controllers.NewAdminController(adminService, postService, cacheService, appCfg.Env, logger),
	}, logger)

	srv := &http.Server{
		Addr:              ":" + appCfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("port", appCfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func initMongoDB(uri string, logger *zap.Logger) (*mongo.Client, error) {
	logger.Info("connecting to mongodb", zap.String("uri", uri))

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// initCache puts Redis in front of the Mongo cache when Redis is enabled and
// reachable. If the Mongo cache cannot be created an in-process cache is
// used instead.
func initCache(cfg config.AppCfg, db *mongo.Database, logger *zap.Logger) services.ICacheService {
	mongoCache, err := services.NewMongoCacheService(db, cfg.L1CacheSize, logger)
	if err != nil {
		logger.Warn("mongo cache unavailable, using in-memory cache", zap.Error(err))
		mem := services.NewCacheService(cfg.CacheTTL)
		mem.StartCleanupWorker(context.Background(), time.Minute)
		return mem
	}

	warmCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mongoCache.WarmUp(warmCtx, cfg.L1CacheSize/10); err != nil {
		logger.Warn("cache warm up failed", zap.Error(err))
	}

	if !cfg.UseRedis {
		return mongoCache
	}
	redisCache, err := services.NewRedisCacheService(cfg.RedisURL, cfg.CacheTTL, logger)
	if err != nil {
		logger.Warn("redis unavailable, using mongo cache only", zap.Error(err))
		return mongoCache
	}
	return services.NewHybridCacheService(redisCache, mongoCache, logger)
}
