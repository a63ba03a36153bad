package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Transit  TransitConfig
	Poll     PollConfig
	Activity ActivityConfig
	Store    StoreConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	BoardSnapshotTTL time.Duration
}

type LogConfig struct {
	Level string
}

// TransitConfig - параметры EFA/TRIAS бэкенда
type TransitConfig struct {
	DepartureURL        string
	TripURL             string
	DepartureMonitorURL string
	RequestorRef        string
	RequestTimeout      time.Duration
	Timezone            string
	InteractivePageSize int
	WidgetPageSize      int
}

// PollConfig - интервалы опроса табло
type PollConfig struct {
	SuccessInterval time.Duration
	FailureInterval time.Duration
	// FailureBackoff: "constant" (default) or "exponential"
	FailureBackoff  string
	MaxFailureDelay time.Duration
}

type ActivityConfig struct {
	Enabled           bool
	Endpoint          string
	UserAgent         string
	StaleAfter        time.Duration
	TokenStreamPrefix string
}

// StoreConfig выбирает бэкенд для избранного и истории push-токенов
type StoreConfig struct {
	// Backend: "redis" (default), "postgres" or "memory"
	Backend string
}

type WorkerConfig struct {
	Enabled       bool
	DefaultStop   string
	FavoritesOnly bool
	Latitude      float64
	Longitude     float64
}

// Defaults mirror the production VVO setup.
const (
	DefaultDepartureURL        = "https://efa.vvo-online.de/std3/trias"
	DefaultTripURL             = "https://efa.vvo-online.de/std3/trias/XML_TRIPSTOPTIMES_REQUEST"
	DefaultDepartureMonitorURL = "https://efa.vvo-online.de/std3/trias/XML_DM_REQUEST"
	DefaultActivityEndpoint    = "https://dvb.hsrv.me/api/activity"
	DefaultUserAgent           = "Haltestellenmonitor Dresden v2"
	DefaultStopGID             = "de:14612:28"
)

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional, container deployments pass plain env vars
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("API_HOST"),
			Port:        viper.GetInt("API_PORT"),
			Env:         viper.GetString("API_ENV"),
			CORSOrigins: viper.GetString("CORS_ALLOW_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			BoardSnapshotTTL: time.Duration(viper.GetInt("BOARD_SNAPSHOT_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Transit: TransitConfig{
			DepartureURL:        viper.GetString("TRANSIT_DEPARTURE_URL"),
			TripURL:             viper.GetString("TRANSIT_TRIP_URL"),
			DepartureMonitorURL: viper.GetString("TRANSIT_DM_URL"),
			RequestorRef:        viper.GetString("TRANSIT_REQUESTOR_REF"),
			RequestTimeout:      time.Duration(viper.GetInt("REQUEST_TIMEOUT")) * time.Second,
			Timezone:            viper.GetString("TRANSIT_TIMEZONE"),
			InteractivePageSize: viper.GetInt("INTERACTIVE_PAGE_SIZE"),
			WidgetPageSize:      viper.GetInt("WIDGET_PAGE_SIZE"),
		},
		Poll: PollConfig{
			SuccessInterval: time.Duration(viper.GetInt("POLL_SUCCESS_INTERVAL")) * time.Second,
			FailureInterval: time.Duration(viper.GetInt("POLL_FAILURE_INTERVAL")) * time.Millisecond,
			FailureBackoff:  viper.GetString("POLL_FAILURE_BACKOFF"),
			MaxFailureDelay: time.Duration(viper.GetInt("POLL_MAX_FAILURE_DELAY")) * time.Second,
		},
		Activity: ActivityConfig{
			Enabled:           viper.GetBool("ACTIVITY_ENABLED"),
			Endpoint:          viper.GetString("ACTIVITY_ENDPOINT"),
			UserAgent:         viper.GetString("ACTIVITY_USER_AGENT"),
			StaleAfter:        time.Duration(viper.GetInt("ACTIVITY_STALE_AFTER")) * time.Minute,
			TokenStreamPrefix: viper.GetString("ACTIVITY_TOKEN_STREAM_PREFIX"),
		},
		Store: StoreConfig{
			Backend: viper.GetString("STORE_BACKEND"),
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			DefaultStop:   viper.GetString("WORKER_DEFAULT_STOP"),
			FavoritesOnly: viper.GetBool("WORKER_FAVORITES_ONLY"),
			Latitude:      viper.GetFloat64("WORKER_LATITUDE"),
			Longitude:     viper.GetFloat64("WORKER_LONGITUDE"),
		},
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults заполняет незаданные значения
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Cache.BoardSnapshotTTL == 0 {
		c.Cache.BoardSnapshotTTL = 36 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Transit.DepartureURL == "" {
		c.Transit.DepartureURL = DefaultDepartureURL
	}
	if c.Transit.TripURL == "" {
		c.Transit.TripURL = DefaultTripURL
	}
	if c.Transit.DepartureMonitorURL == "" {
		c.Transit.DepartureMonitorURL = DefaultDepartureMonitorURL
	}
	if c.Transit.RequestorRef == "" {
		c.Transit.RequestorRef = "haltestellenmonitor"
	}
	if c.Transit.RequestTimeout == 0 {
		c.Transit.RequestTimeout = 20 * time.Second
	}
	if c.Transit.Timezone == "" {
		c.Transit.Timezone = "Europe/Berlin"
	}
	if c.Transit.InteractivePageSize == 0 {
		c.Transit.InteractivePageSize = 40
	}
	if c.Transit.WidgetPageSize == 0 {
		c.Transit.WidgetPageSize = 75
	}

	if c.Poll.SuccessInterval == 0 {
		c.Poll.SuccessInterval = 30 * time.Second
	}
	if c.Poll.FailureInterval == 0 {
		c.Poll.FailureInterval = time.Second
	}
	if c.Poll.FailureBackoff == "" {
		c.Poll.FailureBackoff = "constant"
	}
	if c.Poll.MaxFailureDelay == 0 {
		c.Poll.MaxFailureDelay = 30 * time.Second
	}

	if !viper.IsSet("ACTIVITY_ENABLED") {
		c.Activity.Enabled = true
	}
	if c.Activity.Endpoint == "" {
		c.Activity.Endpoint = DefaultActivityEndpoint
	}
	if c.Activity.UserAgent == "" {
		c.Activity.UserAgent = DefaultUserAgent
	}
	if c.Activity.StaleAfter == 0 {
		c.Activity.StaleAfter = 30 * time.Minute
	}
	if c.Activity.TokenStreamPrefix == "" {
		c.Activity.TokenStreamPrefix = "stream:activity:tokens:"
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = "redis"
	}

	if c.Worker.DefaultStop == "" {
		c.Worker.DefaultStop = DefaultStopGID
	}
	// Dresden town hall
	if c.Worker.Latitude == 0 && c.Worker.Longitude == 0 {
		c.Worker.Latitude = 51.04750
		c.Worker.Longitude = 13.74035
	}
}

// Location возвращает часовой пояс транспортной системы
func (c *TransitConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
