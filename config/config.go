package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// STORE selects the repository backend: "postgres" or "memory".
	Store      string `envconfig:"STORE" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"marketplace"`

	// Optional integrations are skipped when their URL or key is empty.
	RabbitURL          string `envconfig:"RABBIT_URL"`
	RedisURL           string `envconfig:"REDIS_URL"`
	PubNubPublishKey   string `envconfig:"PUBNUB_PUBLISH_KEY"`
	PubNubSubscribeKey string `envconfig:"PUBNUB_SUBSCRIBE_KEY"`
	OTLPEndpoint       string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	CustodyAddress string        `envconfig:"MARKET_CUSTODY_ADDRESS" default:"marketplace"`
	GatewayAddress string        `envconfig:"GATEWAY_ADDRESS" default:"issuance-gateway"`
	FeePercent     int64         `envconfig:"MARKET_FEE_PERCENT" default:"5"`
	TicketValidity time.Duration `envconfig:"TICKET_VALIDITY" default:"240h"`
	FaucetEnabled  bool          `envconfig:"FAUCET_ENABLED" default:"false"`
}

// Load reads .env if present, then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] no .env file loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	return &cfg
}

func (c *Config) Validate() error {
	switch c.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE must be postgres or memory, got %q", c.Store)
	}
	if c.FeePercent < 0 || c.FeePercent > 100 {
		return fmt.Errorf("MARKET_FEE_PERCENT must be within 0..100, got %d", c.FeePercent)
	}
	if c.CustodyAddress == "" || c.GatewayAddress == "" {
		return fmt.Errorf("MARKET_CUSTODY_ADDRESS and GATEWAY_ADDRESS are required")
	}
	if c.CustodyAddress == c.GatewayAddress {
		return fmt.Errorf("custody and gateway addresses must differ")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
