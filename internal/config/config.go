package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the results service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	DatabaseURL string
	RedisURL    string
	NATSURL     string
	JWTSecret   string

	CORSAllowOrigins string
	AccessLog        bool

	ResultsChannel     string
	PrintSettleTimeout time.Duration
	PrintAutoPrint     bool
	PrintRateLimit     int

	School School

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// School is the identity printed in every card header.
type School struct {
	Name    string
	Address string
	Motto   string
	Phone   string
	Email   string
	LogoURL string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// ArchiveEnabled reports whether Cloudinary credentials are present.
func (c Config) ArchiveEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Results API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("results.channel", "gema")
	v.SetDefault("print.settle_timeout", "5s")
	v.SetDefault("print.auto_print", true)
	v.SetDefault("print.rate_limit", 10)
	v.SetDefault("cloudinary.folder", "gema/report-cards")

	settle, err := time.ParseDuration(v.GetString("print.settle_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid print settle timeout: %w", err)
	}
	if settle <= 0 {
		settle = 5 * time.Second
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		CORSAllowOrigins:   v.GetString("cors.allow_origins"),
		AccessLog:          v.GetBool("http.access_log"),
		ResultsChannel:     v.GetString("results.channel"),
		PrintSettleTimeout: settle,
		PrintAutoPrint:     v.GetBool("print.auto_print"),
		PrintRateLimit:     v.GetInt("print.rate_limit"),
		School: School{
			Name:    v.GetString("school.name"),
			Address: v.GetString("school.address"),
			Motto:   v.GetString("school.motto"),
			Phone:   v.GetString("school.phone"),
			Email:   v.GetString("school.email"),
			LogoURL: v.GetString("school.logo_url"),
		},
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
