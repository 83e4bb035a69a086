package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	ServerPort  int

	DatabaseDriver      string
	DatabaseDbPath      string
	DatabasePostgresDSN string

	DatabaseCacheAddress string
	DatabaseCachePort    int

	SessionSecret     string
	SessionExpiryHours int

	MailAPIBaseURL string
	MailAPIKey     string
	MailFrom       string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	GeocodeBaseURL string
	GeocodeAPIKey  string

	LLMBaseURL       string
	LLMAPIKey        string
	LLMModel         string
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
}

func InitConfig() (Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("surveyhub")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", "development")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.db_path", "data/surveyhub.db")
	v.SetDefault("database.cache_address", "localhost")
	v.SetDefault("database.cache_port", 6379)
	v.SetDefault("session.expiry_hours", 24)
	v.SetDefault("mail.from", "surveys@surveyhub.local")
	v.SetDefault("geocode.base_url", "https://geocode.maps.co/search")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("embedding.model", "text-embedding-3-small")

	// A missing config file is fine; env vars and defaults carry it.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return Config{
		Environment: v.GetString("environment"),
		ServerPort:  v.GetInt("server.port"),

		DatabaseDriver:      v.GetString("database.driver"),
		DatabaseDbPath:      v.GetString("database.db_path"),
		DatabasePostgresDSN: v.GetString("database.postgres_dsn"),

		DatabaseCacheAddress: v.GetString("database.cache_address"),
		DatabaseCachePort:    v.GetInt("database.cache_port"),

		SessionSecret:      v.GetString("session.secret"),
		SessionExpiryHours: v.GetInt("session.expiry_hours"),

		MailAPIBaseURL: v.GetString("mail.api_base_url"),
		MailAPIKey:     v.GetString("mail.api_key"),
		MailFrom:       v.GetString("mail.from"),

		SMTPHost:     v.GetString("smtp.host"),
		SMTPPort:     v.GetInt("smtp.port"),
		SMTPUsername: v.GetString("smtp.username"),
		SMTPPassword: v.GetString("smtp.password"),

		GeocodeBaseURL: v.GetString("geocode.base_url"),
		GeocodeAPIKey:  v.GetString("geocode.api_key"),

		LLMBaseURL:       v.GetString("llm.base_url"),
		LLMAPIKey:        v.GetString("llm.api_key"),
		LLMModel:         v.GetString("llm.model"),
		EmbeddingBaseURL: v.GetString("embedding.base_url"),
		EmbeddingAPIKey:  v.GetString("embedding.api_key"),
		EmbeddingModel:   v.GetString("embedding.model"),
	}, nil
}
