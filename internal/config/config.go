package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	NaverClientID     string
	NaverClientSecret string

	OpenAIAPIKey string
	OpenAIModel  string

	WordPressURL        string
	WordPressUsername   string
	WordPressPassword   string
	WordPressCategoryID int

	S3Bucket    string
	EventsTable string

	Keywords             []string
	MaxResultsPerKeyword int
	SearchSort           string
	MaxConcurrency       int

	OutputDir string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		NaverClientID:     getEnv("NAVER_CLIENT_ID", ""),
		NaverClientSecret: getEnv("NAVER_CLIENT_SECRET", ""),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		WordPressURL:        getEnv("WORDPRESS_URL", ""),
		WordPressUsername:   getEnv("WORDPRESS_USERNAME", ""),
		WordPressPassword:   getEnv("WORDPRESS_PASSWORD", ""),
		WordPressCategoryID: getEnvInt("WORDPRESS_CATEGORY_ID", 8),

		S3Bucket:    getEnv("POPUP_S3_BUCKET", ""),
		EventsTable: getEnv("PUBLISHED_EVENTS_TABLE", ""),

		Keywords:             getEnvList("SEARCH_KEYWORDS", []string{"성수동 팝업스토어", "성수 팝업", "서울숲 팝업스토어"}),
		MaxResultsPerKeyword: getEnvInt("MAX_RESULTS_PER_KEYWORD", 20),
		SearchSort:           getEnv("SEARCH_SORT", "date"),
		MaxConcurrency:       getEnvInt("MAX_CONCURRENCY", 3),

		OutputDir: getEnv("OUTPUT_DIR", "output"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
