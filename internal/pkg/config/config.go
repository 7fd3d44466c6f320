package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/reproj/internal/proj"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Transform TransformConfig `mapstructure:"transform"`
	Systems   SystemsConfig   `mapstructure:"systems"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int    `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	RequestTimeout int    `mapstructure:"request_timeout"`
	BodyLimit      int    `mapstructure:"body_limit"`
	RateLimit      int    `mapstructure:"rate_limit"`
	AllowOrigins   string `mapstructure:"allow_origins"`
}

// TransformConfig tunes the coordinate engine.
type TransformConfig struct {
	MaxDepth            int  `mapstructure:"max_depth"`
	KeepExtraDimensions bool `mapstructure:"keep_extra_dimensions"`
	CacheTTL            int  `mapstructure:"cache_ttl"`
}

// SystemsConfig lists the reference systems served. Empty lists fall back to
// the built-in Spanish ED50 zones and WGS84/ETRS89.
type SystemsConfig struct {
	Sources      []SourceConfig      `mapstructure:"sources"`
	Destinations []DestinationConfig `mapstructure:"destinations"`
}

type SourceConfig struct {
	Code      string        `mapstructure:"code"`
	EPSG      int           `mapstructure:"epsg"`
	Name      string        `mapstructure:"name"`
	Zone      int           `mapstructure:"zone"`
	South     bool          `mapstructure:"south"`
	Ellipsoid string        `mapstructure:"ellipsoid"`
	Helmert   HelmertConfig `mapstructure:"helmert"`
	Bounds    []float64     `mapstructure:"bounds"` // min_x, min_y, max_x, max_y
}

type HelmertConfig struct {
	TX float64 `mapstructure:"tx"`
	TY float64 `mapstructure:"ty"`
	TZ float64 `mapstructure:"tz"`
	RX float64 `mapstructure:"rx"`
	RY float64 `mapstructure:"ry"`
	RZ float64 `mapstructure:"rz"`
	DS float64 `mapstructure:"ds"`
}

type DestinationConfig struct {
	Code      string `mapstructure:"code"`
	EPSG      int    `mapstructure:"epsg"`
	Name      string `mapstructure:"name"`
	Ellipsoid string `mapstructure:"ellipsoid"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type TemporalConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.request_timeout", 15)
	v.SetDefault("server.body_limit", 4*1024*1024)
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("transform.max_depth", 64)
	v.SetDefault("transform.keep_extra_dimensions", false)
	v.SetDefault("transform.cache_ttl", 3600)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "reproj")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "reproj")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "reproject-jobs")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: REPROJ_SERVER_PORT → server.port
	v.SetEnvPrefix("REPROJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, "server.body_limit must be positive")
	}
	if c.Transform.MaxDepth <= 0 {
		errs = append(errs, "transform.max_depth must be positive")
	}
	if c.Transform.CacheTTL < 0 {
		errs = append(errs, "transform.cache_ttl must not be negative")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Temporal.Enabled && (c.Temporal.HostPort == "" || c.Temporal.TaskQueue == "") {
		errs = append(errs, "temporal.host_port and temporal.task_queue are required")
	}
	if _, err := c.Systems.Registry(); err != nil {
		errs = append(errs, "systems: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Registry builds the reference-system registry described by the config.
func (s SystemsConfig) Registry() (*proj.Registry, error) {
	sources := proj.DefaultSources()
	if len(s.Sources) > 0 {
		sources = make([]proj.Source, 0, len(s.Sources))
		for _, sc := range s.Sources {
			src, err := sc.source()
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
	}

	destinations := proj.DefaultDestinations()
	if len(s.Destinations) > 0 {
		destinations = make([]proj.Destination, 0, len(s.Destinations))
		for _, dc := range s.Destinations {
			ell, err := ellipsoid(dc.Ellipsoid, proj.WGS84Ellipsoid)
			if err != nil {
				return nil, fmt.Errorf("destination %q: %w", dc.Code, err)
			}
			destinations = append(destinations, proj.Destination{
				Code: dc.Code, EPSG: dc.EPSG, Name: dc.Name, Ellipsoid: ell,
			})
		}
	}

	return proj.NewRegistry(sources, destinations)
}

func (sc SourceConfig) source() (proj.Source, error) {
	ell, err := ellipsoid(sc.Ellipsoid, proj.International1924)
	if err != nil {
		return proj.Source{}, fmt.Errorf("source %q: %w", sc.Code, err)
	}

	var bounds proj.Bounds
	switch len(sc.Bounds) {
	case 0:
	case 4:
		bounds = proj.Bounds{MinX: sc.Bounds[0], MinY: sc.Bounds[1], MaxX: sc.Bounds[2], MaxY: sc.Bounds[3]}
	default:
		return proj.Source{}, fmt.Errorf("source %q: bounds needs 4 values, got %d", sc.Code, len(sc.Bounds))
	}

	return proj.Source{
		Code:   sc.Code,
		EPSG:   sc.EPSG,
		Name:   sc.Name,
		Bounds: bounds,
		UTM:    proj.UTM{Zone: sc.Zone, South: sc.South, Ellipsoid: ell},
		Shift: proj.Helmert{
			TX: sc.Helmert.TX, TY: sc.Helmert.TY, TZ: sc.Helmert.TZ,
			RX: sc.Helmert.RX, RY: sc.Helmert.RY, RZ: sc.Helmert.RZ,
			DS: sc.Helmert.DS,
		},
	}, nil
}

func ellipsoid(name string, fallback proj.Ellipsoid) (proj.Ellipsoid, error) {
	switch strings.ToLower(name) {
	case "":
		return fallback, nil
	case "intl", "international1924", "hayford":
		return proj.International1924, nil
	case "grs80":
		return proj.GRS80, nil
	case "wgs84":
		return proj.WGS84Ellipsoid, nil
	default:
		return proj.Ellipsoid{}, fmt.Errorf("unknown ellipsoid %q", name)
	}
}
