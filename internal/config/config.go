package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"

	LLMOpenAI    = "openai"
	LLMAnthropic = "anthropic"
)

// Config holds everything read from the environment. Empty credentials
// disable the feature that needs them.
type Config struct {
	Port        string
	FrontendURL string

	DatabaseURL        string
	RedisURL           string
	StoreBackend       string
	FirestoreProjectID string

	LLMBackend      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	DeepgramAPIKey  string

	NewsAPIKey       string
	GuardianAPIKey   string
	MediaStackAPIKey string
	FinnHubAPIKey    string
	RSSFeeds         map[string][]string
	NewsCacheTTL     time.Duration
	NewsPageSize     int

	AudioTTL          time.Duration
	CaptureChunkBytes int
	CaptureCadence    time.Duration
	IdleTimeout       time.Duration

	JWTSecret string

	LogLevel  string
	LogFile   string
	TraceFile string
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		FrontendURL:        os.Getenv("FRONTEND_URL"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", StorePostgres)),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		LLMBackend:         strings.ToLower(getEnv("LLM_BACKEND", LLMOpenAI)),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		DeepgramAPIKey:     os.Getenv("DEEPGRAM_API_KEY"),
		NewsAPIKey:         os.Getenv("NEWS_API_KEY"),
		GuardianAPIKey:     os.Getenv("GUARDIAN_API_KEY"),
		MediaStackAPIKey:   os.Getenv("MEDIASTACK_API_KEY"),
		FinnHubAPIKey:      os.Getenv("FINNHUB_API_KEY"),
		JWTSecret:          os.Getenv("AUTH_JWT_SECRET"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),
		TraceFile:          os.Getenv("TRACE_FILE"),
	}

	var err error
	if cfg.RSSFeeds, err = ParseFeeds(os.Getenv("NEWS_RSS_FEEDS")); err != nil {
		return nil, err
	}
	if cfg.NewsCacheTTL, err = getDuration("NEWS_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.NewsPageSize, err = getInt("NEWS_PAGE_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.AudioTTL, err = getDuration("AUDIO_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CaptureChunkBytes, err = getInt("CAPTURE_CHUNK_BYTES", 4096); err != nil {
		return nil, err
	}
	if cfg.CaptureCadence, err = getDuration("CAPTURE_CADENCE", 250*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.IdleTimeout, err = getDuration("DISCUSSION_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case StorePostgres, StoreFirestore:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StorePostgres, StoreFirestore, cfg.StoreBackend)
	}

	switch cfg.LLMBackend {
	case LLMOpenAI, LLMAnthropic:
	default:
		return nil, fmt.Errorf("LLM_BACKEND must be %q or %q, got %q", LLMOpenAI, LLMAnthropic, cfg.LLMBackend)
	}

	return cfg, nil
}

// ParseFeeds reads "category=url,category=url" pairs.
func ParseFeeds(raw string) (map[string][]string, error) {
	feeds := make(map[string][]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		category, url, ok := strings.Cut(pair, "=")
		category, url = strings.TrimSpace(category), strings.TrimSpace(url)
		if !ok || category == "" || url == "" {
			return nil, fmt.Errorf("NEWS_RSS_FEEDS: invalid entry %q", pair)
		}
		feeds[category] = append(feeds[category], url)
	}
	return feeds, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: expected a positive integer, got %q", key, v)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: expected a positive duration, got %q", key, v)
	}
	return d, nil
}
