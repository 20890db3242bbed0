package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server       ServerConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	Generator    GeneratorConfig
	Store        StoreConfig
	AuthProvider AuthProviderConfig
	R2           R2Config
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	JobsPerHour    int
	ApplyPerHour   int
	GeneratePerMin int
	UploadPerHour  int
}

// GeneratorConfig points at the badge-art generation model (an
// OpenAI-compatible chat completion API).
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// StoreConfig points at the external record store's REST endpoint.
type StoreConfig struct {
	BaseURL string
	APIKey  string
}

// AuthProviderConfig points at the external auth provider. Issuer enables
// JWKS verification of provider-issued tokens; JWT.Secret remains as the
// HMAC fallback.
type AuthProviderConfig struct {
	BaseURL string
	APIKey  string
	Issuer  string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("GENERATOR_API_KEY")
	readSecret("STORE_API_KEY")
	readSecret("AUTH_API_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("ratelimit.jobs_per_hour", "RATELIMIT_JOBS_PER_HOUR")
	_ = viper.BindEnv("ratelimit.apply_per_hour", "RATELIMIT_APPLY_PER_HOUR")
	_ = viper.BindEnv("ratelimit.generate_per_min", "RATELIMIT_GENERATE_PER_MIN")
	_ = viper.BindEnv("ratelimit.upload_per_hour", "RATELIMIT_UPLOAD_PER_HOUR")
	_ = viper.BindEnv("generator.api_key", "GENERATOR_API_KEY")
	_ = viper.BindEnv("generator.base_url", "GENERATOR_BASE_URL")
	_ = viper.BindEnv("generator.model", "GENERATOR_MODEL")
	_ = viper.BindEnv("store.base_url", "STORE_BASE_URL")
	_ = viper.BindEnv("store.api_key", "STORE_API_KEY")
	_ = viper.BindEnv("auth.base_url", "AUTH_BASE_URL")
	_ = viper.BindEnv("auth.api_key", "AUTH_API_KEY")
	_ = viper.BindEnv("auth.issuer", "AUTH_ISSUER")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("ratelimit.jobs_per_hour", 20)
	viper.SetDefault("ratelimit.apply_per_hour", 30)
	viper.SetDefault("ratelimit.generate_per_min", 10)
	viper.SetDefault("ratelimit.upload_per_hour", 50)

	// Generator defaults
	viper.SetDefault("generator.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("generator.model", "llama-3.3-70b-versatile")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		RateLimit: RateLimitConfig{
			JobsPerHour:    viper.GetInt("ratelimit.jobs_per_hour"),
			ApplyPerHour:   viper.GetInt("ratelimit.apply_per_hour"),
			GeneratePerMin: viper.GetInt("ratelimit.generate_per_min"),
			UploadPerHour:  viper.GetInt("ratelimit.upload_per_hour"),
		},
		Generator: GeneratorConfig{
			APIKey:  viper.GetString("generator.api_key"),
			BaseURL: viper.GetString("generator.base_url"),
			Model:   viper.GetString("generator.model"),
		},
		Store: StoreConfig{
			BaseURL: viper.GetString("store.base_url"),
			APIKey:  viper.GetString("store.api_key"),
		},
		AuthProvider: AuthProviderConfig{
			BaseURL: viper.GetString("auth.base_url"),
			APIKey:  viper.GetString("auth.api_key"),
			Issuer:  viper.GetString("auth.issuer"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
	}

	return cfg, nil
}
