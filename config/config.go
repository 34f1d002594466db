package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

// Food log backend
const FOODLOG_API_BASE_URL = "http://127.0.0.1:5000"
const FOODLOG_API_PREFIX = "/api"
const FOODLOG_API_TIMEOUT_SECONDS = 15

// Redis Config
const REDIS_DB_ADDRESS = "localhost:6379"
const REDIS_DB_PASSWORD = ""
const REDIS_DB = 0

// Durable client storage keys
const TOKEN_KEY = "foodlog_token"
const USER_KEY = "foodlog_user"
const TEST_USER_KEY = "foodlog_test_user"

// Local HTTP surface
const HTTP_LISTEN_ADDRESS = ":8080"

// Meal history refresher config
const MEAL_HISTORY_REFRESHER_SCHEDULE_MINUTES = 5

// Image normalizer defaults
const IMAGE_MAX_DIMENSION = 720
const IMAGE_QUALITY = 0.6
const IMAGE_OUTPUT_MIME_TYPE = "image/jpeg"
const IMAGE_CORRECT_ORIENTATION = false

// Workflow delays
const PROCESSING_SUCCESS_REDIRECT_MILLIS = 3000
const PROCESSING_FAILURE_REDIRECT_MILLIS = 2500

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const MEALS_RESPONSE_RESOURCE = "meals_response.json"
const UPLOAD_RESPONSE_RESOURCE = "upload_response.json"
const PREDICT_RESPONSE_RESOURCE = "predict_response.json"
const PROFILE_RESPONSE_RESOURCE = "profile_response.json"

// Settings holds the runtime configuration resolved from the environment.
type Settings struct {
	Env                     string
	APIBaseURL              string
	RedisAddress            string
	RedisPassword           string
	RedisDB                 int
	ListenAddress           string
	HistoryRefreshMinutes   int
	ImageMaxDimension       int
	ImageQuality            float64
	ImageCorrectOrientation bool
	CameraURL               string
	LogLevel                string
}

// Load reads an optional .env file and resolves Settings, falling back to
// the constants above for anything left unset.
func Load() Settings {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("[config] could not load .env file: %v", err)
	}

	return Settings{
		Env:                     getString("MEALSNAP_ENV", "prod"),
		APIBaseURL:              getString("FOODLOG_API_BASE_URL", FOODLOG_API_BASE_URL),
		RedisAddress:            getString("REDIS_DB_ADDRESS", REDIS_DB_ADDRESS),
		RedisPassword:           getString("REDIS_DB_PASSWORD", REDIS_DB_PASSWORD),
		RedisDB:                 getInt("REDIS_DB", REDIS_DB),
		ListenAddress:           getString("MEALSNAP_LISTEN_ADDRESS", HTTP_LISTEN_ADDRESS),
		HistoryRefreshMinutes:   getInt("MEAL_HISTORY_REFRESH_MINUTES", MEAL_HISTORY_REFRESHER_SCHEDULE_MINUTES),
		ImageMaxDimension:       getInt("IMAGE_MAX_DIMENSION", IMAGE_MAX_DIMENSION),
		ImageQuality:            getFloat("IMAGE_QUALITY", IMAGE_QUALITY),
		ImageCorrectOrientation: getBool("IMAGE_CORRECT_ORIENTATION", IMAGE_CORRECT_ORIENTATION),
		CameraURL:               getString("MEALSNAP_CAMERA_URL", ""),
		LogLevel:                getString("MEALSNAP_LOG_LEVEL", "info"),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warnf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warnf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return b
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warnf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return f
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	// Check if PROJECT_ROOT is set
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	// Default to the current working directory
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resource_file string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resource_file)
}
