package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort         string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL      string `env:"DATABASE_URL,required"`
	RunMigrations    bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	WebhookSecret    string `env:"CLERK_WEBHOOK_SECRET,required"`
	IdentityProvider string `env:"IDENTITY_PROVIDER" envDefault:"clerk"`
	SessionJWTKey    string `env:"SESSION_JWT_KEY"`
	SessionJWTSecret string `env:"SESSION_JWT_SECRET"`
	SessionJWTIssuer string `env:"SESSION_JWT_ISSUER"`
	RedisAddr        string `env:"REDIS_ADDR"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
