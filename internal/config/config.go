package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker and consumer-group settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// PricesConfig holds the external price feed settings.
type PricesConfig struct {
	FuelFeedURL  string
	PowerFeedURL string
	PowerToken   string
	CacheTTL     time.Duration
}

// ProviderConfig holds the directions provider settings.
type ProviderConfig struct {
	BaseURL string
	APIKey  string
}

// ServiceConfig holds all configuration for the routing service.
type ServiceConfig struct {
	Port     string
	AppEnv   string
	DB       DatabaseConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Prices   PricesConfig
	Provider ProviderConfig
}

// Load reads configuration from ROUTING_-prefixed environment variables
// with development defaults.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ROUTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_port", ":8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "routing")
	v.SetDefault("db_password", "routing")
	v.SetDefault("db_name", "routing")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_group_prefix", "wayfarer.")
	v.SetDefault("fuel_feed_url", "https://sedeaplicaciones.minetur.gob.es/ServiciosRESTCarburantes/PreciosCarburantes/EstacionesTerrestres/")
	v.SetDefault("power_feed_url", "https://api.esios.ree.es/indicators/600")
	v.SetDefault("power_feed_token", "")
	v.SetDefault("price_cache_ttl", "1h")
	v.SetDefault("provider_url", "https://api.openrouteservice.org")
	v.SetDefault("provider_api_key", "")

	port := v.GetString("service_port")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("app_env"),
		DB: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		JWT: JWTConfig{Secret: v.GetString("jwt_secret")},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(v.GetString("kafka_brokers"), ","),
			GroupPrefix: v.GetString("kafka_group_prefix"),
		},
		Prices: PricesConfig{
			FuelFeedURL:  v.GetString("fuel_feed_url"),
			PowerFeedURL: v.GetString("power_feed_url"),
			PowerToken:   v.GetString("power_feed_token"),
			CacheTTL:     v.GetDuration("price_cache_ttl"),
		},
		Provider: ProviderConfig{
			BaseURL: v.GetString("provider_url"),
			APIKey:  v.GetString("provider_api_key"),
		},
	}, nil
}
