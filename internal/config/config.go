package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver         string // "postgres" or "memory"
	Host           string
	Port           string
	User           string
	Password       string
	Database       string
	Schema         string
	SSLMode        string
	ConnectRetries int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type AuthConfig struct {
	AdminRoles []string
}

type UploadConfig struct {
	Dir            string
	MaxImageSizeKB int
	MaxImageFiles  int
}

// formOverhead covers the text fields and multipart framing of a submission.
const formOverhead = 1 << 20

// MaxBodyBytes bounds an admin request body: a full set of images at the
// size limit plus the form around them.
func (u UploadConfig) MaxBodyBytes() int64 {
	files := u.MaxImageFiles
	if files < 1 {
		files = 1
	}
	return int64(files)*int64(u.MaxImageSizeKB)<<10 + formOverhead
}

type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

type LogConfig struct {
	File string
}

// DSN builds the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode, d.Schema)
}

// Addr returns the host:port pair for the Redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Env != "production"
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_CONNECT_RETRIES", 5)
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("AUTH_ADMIN_ROLES", "admin,supermoderator")
	viper.SetDefault("UPLOAD_DIR", "public/uploads/products")
	viper.SetDefault("UPLOAD_MAX_IMAGE_KB", 300)
	viper.SetDefault("UPLOAD_MAX_IMAGE_FILES", 10)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("LOG_FILE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(viper.GetString("DB_DRIVER")),
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASSWORD"),
			Database:       viper.GetString("DB_DATABASE"),
			Schema:         viper.GetString("DB_SCHEMA"),
			SSLMode:        viper.GetString("DB_SSLMODE"),
			ConnectRetries: viper.GetInt("DB_CONNECT_RETRIES"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Auth: AuthConfig{
			AdminRoles: splitList(viper.GetString("AUTH_ADMIN_ROLES")),
		},
		Upload: UploadConfig{
			Dir:            viper.GetString("UPLOAD_DIR"),
			MaxImageSizeKB: viper.GetInt("UPLOAD_MAX_IMAGE_KB"),
			MaxImageFiles:  viper.GetInt("UPLOAD_MAX_IMAGE_FILES"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Log: LogConfig{
			File: viper.GetString("LOG_FILE"),
		},
	}
}

// splitList turns a comma separated value into trimmed, non-empty items.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
