package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"adstudio/internal/prompt"
)

const (
	DefaultTextModelID  = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	DefaultImageModelID = "stability.sd3-large-v1:0"
)

// Backend selectors.
const (
	TextProviderBedrock = "bedrock"
	TextProviderGemini  = "gemini"

	HistoryDynamoDB = "dynamodb"
	HistoryPostgres = "postgres"

	PublishLambda = "lambda"
	PublishRedis  = "redis"

	BlobS3         = "s3"
	BlobFilesystem = "filesystem"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv    string
	Port      string
	AWSRegion string

	// Downstream consumer of generation events.
	PublishFunctionName string
	SelfFunctionARN     string
	PublishBackend      string
	RedisURL            string
	RedisChannel        string

	TextProvider  string
	TextModelID   string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	ModelOverride string
	ImageModelID  string
	ImageSchema   prompt.Schema

	BlobBackend    string
	ImageBucket    string
	AssetsBucket   string
	StoragePath    string
	StorageBaseURL string

	HistoryBackend string
	MoodboardTable string
	MoodboardIndex string
	DatabaseURL    string
	DBMaxConns     int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	CORSAllowedOrigins []string
	// Requests per minute per client on the generation routes; 0 disables.
	RateLimitPerMinute int
}

// LoadConfig reads .env files when present, then the environment, and
// validates the backend selection.
func LoadConfig() (*Config, error) {
	for _, file := range []string{".env", ".env.local"} {
		_ = godotenv.Load(file)
	}

	port := getEnv("PORT", "8080")
	modelOverride := strings.TrimSpace(os.Getenv("ModelOverride"))
	imageModel := getEnv("IMAGE_MODEL_ID", DefaultImageModelID)
	if modelOverride != "" {
		imageModel = modelOverride
	}

	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "production"),
		Port:                port,
		AWSRegion:           strings.TrimSpace(os.Getenv("AWS_REGION")),
		PublishFunctionName: strings.TrimSpace(os.Getenv("PublishResultsViaAppSyncLambda")),
		SelfFunctionARN:     strings.TrimSpace(os.Getenv("SELF_FUNCTION_ARN")),
		PublishBackend:      getEnv("PUBLISH_BACKEND", PublishLambda),
		RedisURL:            os.Getenv("REDIS_URL"),
		RedisChannel:        getEnv("REDIS_CHANNEL", "adstudio:results"),
		TextProvider:        getEnv("TEXT_PROVIDER", TextProviderBedrock),
		TextModelID:         getEnv("TEXT_MODEL_ID", DefaultTextModelID),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:       os.Getenv("GEMINI_BASE_URL"),
		ModelOverride:       modelOverride,
		ImageModelID:        imageModel,
		ImageSchema:         prompt.ResolveSchema(modelOverride, getEnvBool("IMAGE_COLOR_GUIDED", false)),
		BlobBackend:         getEnv("BLOB_BACKEND", BlobS3),
		ImageBucket:         strings.TrimSpace(os.Getenv("ImageBucket")),
		AssetsBucket:        strings.TrimSpace(os.Getenv("AssetsBucket")),
		StoragePath:         getEnv("STORAGE_PATH", "./data/storage"),
		StorageBaseURL:      getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		HistoryBackend:      getEnv("HISTORY_BACKEND", HistoryDynamoDB),
		MoodboardTable:      strings.TrimSpace(os.Getenv("MoodboardHistoryTableName")),
		MoodboardIndex:      getEnv("MOODBOARD_INDEX_NAME", "moodboard_id-index"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DBMaxConns:          getEnvInt("DB_MAX_CONNS", 10),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.AWSRegion == "" {
		errs = append(errs, errors.New("AWS_REGION is required"))
	}

	switch c.TextProvider {
	case TextProviderBedrock:
	case TextProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini text provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("TEXT_PROVIDER %q is not supported", c.TextProvider))
	}

	switch c.PublishBackend {
	case PublishLambda:
		if c.PublishFunctionName == "" {
			errs = append(errs, errors.New("PublishResultsViaAppSyncLambda is required for lambda publishing"))
		}
	case PublishRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for redis publishing"))
		}
	default:
		errs = append(errs, fmt.Errorf("PUBLISH_BACKEND %q is not supported", c.PublishBackend))
	}

	switch c.HistoryBackend {
	case HistoryDynamoDB:
		if c.MoodboardTable == "" {
			errs = append(errs, errors.New("MoodboardHistoryTableName is required for dynamodb history"))
		}
	case HistoryPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres history"))
		}
		if c.MoodboardTable == "" {
			c.MoodboardTable = "moodboard_history"
		}
	default:
		errs = append(errs, fmt.Errorf("HISTORY_BACKEND %q is not supported", c.HistoryBackend))
	}

	switch c.BlobBackend {
	case BlobS3:
		if c.ImageBucket == "" {
			errs = append(errs, errors.New("ImageBucket is required for s3 blobs"))
		}
	case BlobFilesystem:
		if c.ImageBucket == "" {
			c.ImageBucket = "images"
		}
	default:
		errs = append(errs, fmt.Errorf("BLOB_BACKEND %q is not supported", c.BlobBackend))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
