package app

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurochat-backend/internal/platform/envutil"
	"github.com/yungbote/neurochat-backend/internal/platform/logger"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const insecureDefaultSecret = "dev-secret"

type ServerConfig struct {
	Port               int      `yaml:"port"`
	CookieSecure       bool     `yaml:"cookie_secure"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	SecretKey            string `yaml:"secret_key"`
	SessionTTLHours      int    `yaml:"session_ttl_hours"`
	SweepIntervalMinutes int    `yaml:"sweep_interval_minutes"`
}

type ModelConfig struct {
	Provider          string `yaml:"provider"`
	GoogleAPIKey      string `yaml:"-"`
	GeminiModel       string `yaml:"gemini_model"`
	OpenAIAPIKey      string `yaml:"-"`
	OpenAIModel       string `yaml:"openai_model"`
	OpenAIBaseURL     string `yaml:"openai_base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	SystemInstruction string `yaml:"system_instruction"`
}

type StreamConfig struct {
	Mode         string `yaml:"mode"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkDelayMS int    `yaml:"chunk_delay_ms"`
}

type ExtractConfig struct {
	GCPProjectID          string `yaml:"gcp_project_id"`
	DocumentAILocation    string `yaml:"documentai_location"`
	DocumentAIProcessorID string `yaml:"documentai_processor_id"`
	VisionEnabled         bool   `yaml:"vision_enabled"`
	// Credentials is a service-account file path or inline JSON; empty uses ADC.
	Credentials string `yaml:"credentials"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Environment string  `yaml:"environment"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Model    ModelConfig    `yaml:"model"`
	Stream   StreamConfig   `yaml:"stream"`
	Extract  ExtractConfig  `yaml:"extract"`
	Redis    RedisConfig    `yaml:"redis"`
	Otel     OtelConfig     `yaml:"otel"`
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.Auth.SweepIntervalMinutes) * time.Minute
}

func (c Config) ModelTimeout() time.Duration {
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

func (c Config) ChunkDelay() time.Duration {
	return time.Duration(c.Stream.ChunkDelayMS) * time.Millisecond
}

// LoadConfig layers the embedded defaults, an optional CONFIG_FILE and the environment.
// A .env file in the working directory is read first when present.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("Ignoring unreadable .env", "error", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse default config: %w", err)
	}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Config file loaded", "path", path)
	}
	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.Auth.SecretKey == insecureDefaultSecret {
		log.Warn("SECRET_KEY is the development default; set it before deploying")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = envutil.Int("PORT", cfg.Server.Port)
	cfg.Server.CookieSecure = envutil.Bool("COOKIE_SECURE", cfg.Server.CookieSecure)
	if v := envutil.String("CORS_ALLOWED_ORIGINS", ""); v != "" {
		cfg.Server.CORSAllowedOrigins = splitList(v)
	}

	cfg.Database.URL = envutil.String("DATABASE_URL", cfg.Database.URL)

	cfg.Auth.SecretKey = envutil.String("SECRET_KEY", cfg.Auth.SecretKey)
	cfg.Auth.SessionTTLHours = envutil.Int("SESSION_TTL_HOURS", cfg.Auth.SessionTTLHours)

	cfg.Model.Provider = strings.ToLower(envutil.String("MODEL_PROVIDER", cfg.Model.Provider))
	cfg.Model.GoogleAPIKey = envutil.String("GOOGLE_API_KEY", cfg.Model.GoogleAPIKey)
	cfg.Model.GeminiModel = envutil.String("GEMINI_MODEL", cfg.Model.GeminiModel)
	cfg.Model.OpenAIAPIKey = envutil.String("OPENAI_API_KEY", cfg.Model.OpenAIAPIKey)
	cfg.Model.OpenAIModel = envutil.String("OPENAI_MODEL", cfg.Model.OpenAIModel)
	cfg.Model.OpenAIBaseURL = envutil.String("OPENAI_BASE_URL", cfg.Model.OpenAIBaseURL)
	cfg.Model.TimeoutSeconds = envutil.Int("MODEL_TIMEOUT_SECONDS", cfg.Model.TimeoutSeconds)
	cfg.Model.SystemInstruction = envutil.String("SYSTEM_INSTRUCTION", cfg.Model.SystemInstruction)

	cfg.Stream.Mode = strings.ToLower(envutil.String("STREAM_MODE", cfg.Stream.Mode))
	cfg.Stream.ChunkSize = envutil.Int("STREAM_CHUNK_SIZE", cfg.Stream.ChunkSize)
	cfg.Stream.ChunkDelayMS = envutil.Int("STREAM_CHUNK_DELAY_MS", cfg.Stream.ChunkDelayMS)

	cfg.Extract.GCPProjectID = envutil.String("GCP_PROJECT_ID", cfg.Extract.GCPProjectID)
	cfg.Extract.DocumentAILocation = envutil.String("DOCUMENTAI_LOCATION", cfg.Extract.DocumentAILocation)
	cfg.Extract.DocumentAIProcessorID = envutil.String("DOCUMENTAI_PROCESSOR_ID", cfg.Extract.DocumentAIProcessorID)
	cfg.Extract.VisionEnabled = envutil.Bool("VISION_ENABLED", cfg.Extract.VisionEnabled)
	cfg.Extract.Credentials = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", cfg.Extract.Credentials)
	cfg.Extract.Credentials = envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", cfg.Extract.Credentials)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Otel.ServiceName)
	cfg.Otel.Environment = envutil.String("OTEL_ENVIRONMENT", cfg.Otel.Environment)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	if v := envutil.String("OTEL_SAMPLE_RATIO", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Otel.SampleRatio = f
		}
	}
}

func (c Config) validate() error {
	switch c.Model.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	switch c.Stream.Mode {
	case "synthetic", "native":
	default:
		return fmt.Errorf("unknown stream mode %q", c.Stream.Mode)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Auth.SecretKey) == "" {
		return fmt.Errorf("SECRET_KEY must not be empty")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
