package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the service.
const EnvPrefix = "ROUTEPLANNER"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds broker settings. No brokers disables messaging.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RoutingConfig selects and configures the routing backend.
type RoutingConfig struct {
	Backend            string
	GoogleAPIKey       string
	NominatimURL       string
	NominatimUserAgent string
	OSRMURL            string
}

// MapConfig holds the default map view.
type MapConfig struct {
	DefaultLat  float64
	DefaultLng  float64
	DefaultZoom int
	FitPadding  int
	MaxZoom     int
}

// ServiceConfig holds all configuration for the route planner service.
type ServiceConfig struct {
	Port              string
	AppEnv            string
	Routing           RoutingConfig
	Map               MapConfig
	ErrorDismissAfter time.Duration
	SessionTTL        time.Duration
	DBConfig          DatabaseConfig
	KafkaConfig       KafkaConfig
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory when one exists.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:   servicePort(v.GetString("SERVICE_PORT")),
		AppEnv: v.GetString("APP_ENV"),
		Routing: RoutingConfig{
			Backend:            strings.ToLower(strings.TrimSpace(v.GetString("ROUTING_BACKEND"))),
			GoogleAPIKey:       v.GetString("GOOGLE_MAPS_API_KEY"),
			NominatimURL:       v.GetString("NOMINATIM_URL"),
			NominatimUserAgent: v.GetString("NOMINATIM_USER_AGENT"),
			OSRMURL:            v.GetString("OSRM_URL"),
		},
		Map: MapConfig{
			DefaultLat:  v.GetFloat64("MAP_DEFAULT_LAT"),
			DefaultLng:  v.GetFloat64("MAP_DEFAULT_LNG"),
			DefaultZoom: v.GetInt("MAP_DEFAULT_ZOOM"),
			FitPadding:  v.GetInt("MAP_FIT_PADDING"),
			MaxZoom:     v.GetInt("MAP_MAX_ZOOM"),
		},
		ErrorDismissAfter: v.GetDuration("ERROR_DISMISS_AFTER"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ROUTING_BACKEND", "osrm")
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("NOMINATIM_USER_AGENT", "service-routeplanner/1.0")
	v.SetDefault("OSRM_URL", "https://router.project-osrm.org")
	v.SetDefault("MAP_DEFAULT_LAT", 40.7128)
	v.SetDefault("MAP_DEFAULT_LNG", -74.0060)
	v.SetDefault("MAP_DEFAULT_ZOOM", 10)
	v.SetDefault("MAP_FIT_PADDING", 20)
	v.SetDefault("MAP_MAX_ZOOM", 18)
	v.SetDefault("ERROR_DISMISS_AFTER", "5s")
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "routeplanner_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_PREFIX", "kilat-")
}

func (c *ServiceConfig) validate() error {
	switch c.Routing.Backend {
	case "google":
		if c.Routing.GoogleAPIKey == "" {
			return fmt.Errorf("%s_GOOGLE_MAPS_API_KEY is required for the google routing backend", EnvPrefix)
		}
	case "osrm":
	default:
		return fmt.Errorf("unknown routing backend %q (want google or osrm)", c.Routing.Backend)
	}
	if c.Map.DefaultZoom < 0 || c.Map.DefaultZoom > c.Map.MaxZoom {
		return fmt.Errorf("map default zoom %d outside 0..%d", c.Map.DefaultZoom, c.Map.MaxZoom)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

// servicePort turns "8080" into ":8080" and leaves host:port values alone.
func servicePort(p string) string {
	if strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
