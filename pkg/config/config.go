package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"reservation-service"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DB
	DBDriver     string        `envconfig:"DB_DRIVER" default:"sqlite"` // postgres|sqlite
	DBDSN        string        `envconfig:"DB_DSN" default:"file:reservations.db?_foreign_keys=on"`
	AutoMigrate  bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	// JWT
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`

	// Accounts
	AllowAdminSignup bool   `envconfig:"ALLOW_ADMIN_SIGNUP" default:"false"`
	AdminEmail       string `envconfig:"ADMIN_EMAIL"`
	AdminPassword    string `envconfig:"ADMIN_PASSWORD"`

	// Network
	HTTPAddr    string   `envconfig:"HTTP_ADDR" default:":8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// RabbitMQ; events are not published when RabbitURL is empty
	RabbitURL           string `envconfig:"RABBIT_URL"`
	ReservationExchange string `envconfig:"RESERVATION_EXCHANGE" default:"reservation.exchange"`

	// Tracing is disabled when the endpoint is empty
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Env          string `envconfig:"ENV" default:"dev"`
}

func (a App) TokenTTL() time.Duration {
	return time.Duration(a.JWTExpireMin) * time.Minute
}

// Load reads an optional .env file and then the process environment.
func Load() (App, error) {
	_ = godotenv.Load(".env")
	var c App
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	return c, nil
}
