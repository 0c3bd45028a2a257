package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8000"`

	// Signierschlüssel für Bearer-Tokens.
	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	JWTTTLHours    int    `envconfig:"JWT_TTL_HOURS" default:"72"`
	AdminEmail     string `envconfig:"ADMIN_EMAIL" default:"admin@newsdesk.local"`
	AdminPassword  string `envconfig:"ADMIN_PASSWORD"`
	AdminUsername  string `envconfig:"ADMIN_USERNAME" default:"admin"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	CountCacheTTL int    `envconfig:"COUNT_CACHE_TTL_SECONDS" default:"60"`

	MediaS3Key    string `envconfig:"MEDIA_S3_KEY" required:"true"`
	MediaS3Secret string `envconfig:"MEDIA_S3_SECRET" required:"true"`
	MediaS3URL    string `envconfig:"MEDIA_S3_URL" required:"true"`
	MediaS3Region string `envconfig:"MEDIA_S3_REGION" required:"true"`
	MediaS3Bucket string `envconfig:"MEDIA_S3_BUCKET" required:"true"`

	// Cron-Plan für die Neuberechnung der denormalisierten Zähler.
	ReconcileSchedule string `envconfig:"RECONCILE_SCHEDULE" default:"0 * * * *"`

	// Wenn true, wird gerendertes Vorschau-HTML serverseitig durch bluemonday
	// gefiltert. Standard ist false, weil Bestandsinhalte rohes HTML enthalten.
	SanitizePreview bool `envconfig:"SANITIZE_PREVIEW" default:"false"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
