package di

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"mealsnap/api"
	"mealsnap/api/foodlog"
	"mealsnap/capture"
	"mealsnap/config"
	"mealsnap/dao/redis"
	"mealsnap/db"
	"mealsnap/imaging"
	"mealsnap/server"
	"mealsnap/server/handlers"
	services "mealsnap/service"
	"mealsnap/session"
	"mealsnap/workflow"
)

const (
	ENV_PROD  = "prod"
	ENV_DEV   = "dev"
	ENV_LOCAL = "local"
)

// Container holds all application dependencies.
type Container struct {
	Settings                    config.Settings
	RedisClient                 db.RedisClient
	RedisSessionDao             *redis.RedisSessionDAO
	RedisMealDao                *redis.RedisMealDAO
	FoodLogAPI                  foodlog.FoodLogAPI
	Normalizer                  *imaging.Normalizer
	Camera                      *capture.CameraSource
	CaptureSession              *session.Session
	WorkflowStore               *workflow.Store
	AuthService                 *services.AuthService
	MealHistoryService          *services.MealHistoryService
	MealFlowService             *services.MealFlowService
	MealHistoryRefresherService *services.MealHistoryRefresherService
	MuxRouter                   *mux.Router
	Router                      *server.Router
	MealSnapHttpServer          *server.MealSnapHttpServer
}

// NewContainer initializes and wires up all dependencies. "prod" talks to
// Redis and the real backend, "dev" to Redis and the fixture backend, and
// "local" keeps everything in memory.
func NewContainer(ctx context.Context, settings config.Settings) (*Container, error) {
	log.Infof("initializing container - env: %s", settings.Env)

	var redisClient db.RedisClient
	if settings.Env == ENV_LOCAL {
		redisClient = db.NewMockRedisClient(ctx)
		log.Info("Using in-memory storage")
	} else {
		redisInternalClient := goredis.NewClient(&goredis.Options{
			Addr:     settings.RedisAddress,
			Password: settings.RedisPassword,
			DB:       settings.RedisDB,
		})
		redisClient = db.NewStorageRedisClient(ctx, redisInternalClient)
		if err := redisClient.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", settings.RedisAddress, err)
		}
	}

	redisSessionDao := redis.NewRedisSessionDAO(redisClient)
	redisMealDao := redis.NewRedisMealDAO(redisClient)

	var foodLogAPI foodlog.FoodLogAPI
	if settings.Env != ENV_PROD {
		foodLogAPI = foodlog.NewFoodLogApiClientMock()
		log.Info("Using mock food log api")
	} else {
		log.Infof("Using food log api at %s", settings.APIBaseURL)
		httpClient := api.NewHTTPClient(settings.APIBaseURL + config.FOODLOG_API_PREFIX)
		httpClient.HTTPClient.Timeout = config.FOODLOG_API_TIMEOUT_SECONDS * time.Second
		foodLogAPI = foodlog.NewFoodLogApiClient(httpClient, settings.APIBaseURL)
	}

	normalizer := imaging.NewNormalizer(imaging.Options{
		MaxDimension:       settings.ImageMaxDimension,
		Quality:            settings.ImageQuality,
		MimeType:           config.IMAGE_OUTPUT_MIME_TYPE,
		CorrectOrientation: settings.ImageCorrectOrientation,
	})
	camera := capture.NewCameraSource(capture.NewSnapshotCamera(settings.CameraURL), nil)
	captureSession := session.New(normalizer, camera, nil)
	workflowStore := workflow.NewStore()

	authService := services.NewAuthService(redisSessionDao, foodLogAPI)
	mealHistoryService := services.NewMealHistoryService(foodLogAPI, redisMealDao)
	if err := mealHistoryService.LoadCached(); err != nil {
		log.Warnf("Unable to load cached meals: %v", err)
	}
	mealFlowService := services.NewMealFlowService(captureSession, workflowStore, foodLogAPI, mealHistoryService).
		WithDelays(config.PROCESSING_SUCCESS_REDIRECT_MILLIS*time.Millisecond, config.PROCESSING_FAILURE_REDIRECT_MILLIS*time.Millisecond)
	refresherService := services.NewMealHistoryRefresherService(mealHistoryService)

	muxRouter := mux.NewRouter()
	router := server.NewRouter(
		handlers.NewAuthHandler(authService),
		handlers.NewCaptureHandler(mealFlowService),
		handlers.NewMealHandler(mealFlowService, mealHistoryService, foodLogAPI),
		authService,
		muxRouter,
	)
	httpServer := server.NewMealSnapHttpServer(router, muxRouter, settings.ListenAddress)

	return &Container{
		Settings:                    settings,
		RedisClient:                 redisClient,
		RedisSessionDao:             redisSessionDao,
		RedisMealDao:                redisMealDao,
		FoodLogAPI:                  foodLogAPI,
		Normalizer:                  normalizer,
		Camera:                      camera,
		CaptureSession:              captureSession,
		WorkflowStore:               workflowStore,
		AuthService:                 authService,
		MealHistoryService:          mealHistoryService,
		MealFlowService:             mealFlowService,
		MealHistoryRefresherService: refresherService,
		MuxRouter:                   muxRouter,
		Router:                      router,
		MealSnapHttpServer:          httpServer,
	}, nil
}
