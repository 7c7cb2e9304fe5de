package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	API        APIConfig
	LLM        LLMConfig
	Generation GenerationConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type APIConfig struct {
	Key string
}

// LLMConfig selects and configures the text-generation provider.
type LLMConfig struct {
	Provider        string // "gemini" or "anthropic"
	GeminiAPIKey    string
	AnthropicAPIKey string
	Model           string // optional override; empty triggers model discovery
	Timeout         time.Duration
}

// GenerationConfig holds the knobs for both generation loops.
type GenerationConfig struct {
	SubjectCronSpec  string
	JobCronSpec      string
	SubjectBatchSize int
	DefaultBatchSize int
	MaxJobErrors     int
	JobKickDelay     time.Duration
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LLM_PROVIDER", "gemini")
	viper.SetDefault("LLM_TIMEOUT", "5m")
	viper.SetDefault("SUBJECT_CRON_SPEC", "0 */5 * * * *")
	viper.SetDefault("JOB_CRON_SPEC", "*/30 * * * * *")
	viper.SetDefault("SUBJECT_BATCH_SIZE", 10)
	viper.SetDefault("DEFAULT_JOB_BATCH_SIZE", 5)
	viper.SetDefault("MAX_JOB_ERRORS", 3)
	viper.SetDefault("JOB_KICK_DELAY", "2s")

	llmTimeout, err := time.ParseDuration(viper.GetString("LLM_TIMEOUT"))
	if err != nil {
		llmTimeout = 5 * time.Minute
	}
	kickDelay, err := time.ParseDuration(viper.GetString("JOB_KICK_DELAY"))
	if err != nil {
		kickDelay = 2 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
		LLM: LLMConfig{
			Provider:        viper.GetString("LLM_PROVIDER"),
			GeminiAPIKey:    viper.GetString("GEMINI_API_KEY"),
			AnthropicAPIKey: viper.GetString("ANTHROPIC_API_KEY"),
			Model:           viper.GetString("LLM_MODEL"),
			Timeout:         llmTimeout,
		},
		Generation: GenerationConfig{
			SubjectCronSpec:  viper.GetString("SUBJECT_CRON_SPEC"),
			JobCronSpec:      viper.GetString("JOB_CRON_SPEC"),
			SubjectBatchSize: viper.GetInt("SUBJECT_BATCH_SIZE"),
			DefaultBatchSize: viper.GetInt("DEFAULT_JOB_BATCH_SIZE"),
			MaxJobErrors:     viper.GetInt("MAX_JOB_ERRORS"),
			JobKickDelay:     kickDelay,
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.LLM.GeminiAPIKey == "" && cfg.LLM.AnthropicAPIKey == "" {
		log.Println("WARNING: no LLM API key is set")
	}

	return cfg, nil
}

// LoadDatabaseOnly reads just the database settings, for schema bootstrap runs.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")

	return &DatabaseConfig{
		Host:    viper.GetString("DB_HOST"),
		Port:    viper.GetString("DB_PORT"),
		Name:    viper.GetString("DB_NAME"),
		User:    viper.GetString("DB_USER"),
		Pass:    viper.GetString("DB_PASS"),
		Charset: viper.GetString("DB_CHARSET"),
	}, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
