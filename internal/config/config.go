package config

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppName    string `mapstructure:"APP_NAME"`
	ServerPort int    `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// RabbitMQ is optional: an empty URL disables event publishing entirely.
	RabbitMQURL       string `mapstructure:"RABBITMQ_URL"`
	EventExchangeName string `mapstructure:"EVENT_EXCHANGE_NAME"`
	EventRoutingKey   string `mapstructure:"EVENT_ROUTING_KEY"`
}

// LoadConfig reads app.env from path (if present) and the environment, with
// sane defaults for everything except DATABASE_URL and JWT_SECRET.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("APP_NAME", "stocktrack")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("ALLOWED_ORIGINS", "")

	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("EVENT_EXCHANGE_NAME", "events.stock")
	viper.SetDefault("EVENT_ROUTING_KEY", "stock.movement")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Info().Msg("No config file found, using environment variables and defaults.")
			err = nil
		} else {
			log.Error().Err(err).Msg("Error reading config file")
			return
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	err = viper.Unmarshal(&config)
	return
}
