package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del servicio, cargada desde env.
// El único secreto obligatorio es JWT_SECRET (tokens de verificación/reset).
type Config struct {
	Port string

	// Si PostgresDSN viene, usamos Postgres; si no, store embebido en DBFile.
	PostgresDSN string
	DBFile      string

	JWTSecret string

	// Kafka es opcional: si no hay broker, los eventos de dominio no se publican.
	KafkaBroker string
	KafkaTopic  string

	UploadDir string

	// Semilla de la primera cuenta staff (la API no deja crear staff sin
	// estar logueado como staff). Vacío = no se siembra nada.
	AdminEmail    string
	AdminPassword string

	// Intervalo del loop de push de notificaciones (default 5s).
	StreamPollInterval time.Duration
}

// Load lee .env (fuera de prod) y arma la Config desde el entorno.
func Load() Config {
	if os.Getenv("ENV") != "prod" {
		// best-effort: en dev puede no existir .env
		_ = godotenv.Load()
	}

	return Config{
		Port:               getenv("PORT", "8080"),
		PostgresDSN:        os.Getenv("DB_DSN"),
		DBFile:             getenv("DB_FILE", "data/clinic.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		KafkaBroker:        os.Getenv("KAFKA_BROKER"),
		KafkaTopic:         getenv("KAFKA_TOPIC", "clinic-events"),
		UploadDir:          getenv("UPLOAD_DIR", "uploads"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		StreamPollInterval: parseDuration(os.Getenv("STREAM_POLL_INTERVAL"), 5*time.Second),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseDuration(s string, def time.Duration) time.Duration {
	if strings.TrimSpace(s) == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
