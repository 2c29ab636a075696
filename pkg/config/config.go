package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration. Values come from defaults,
// then the YAML file named by CONFIG_PATH, then environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Render   RenderConfig   `yaml:"render"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Worker   WorkerConfig   `yaml:"worker"`
	Limiter  LimiterConfig  `yaml:"limiter"`
	Log      logx.Config    `yaml:"log"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	StaticDir   string `yaml:"static_dir"`
	BodyLimitMB int    `yaml:"body_limit_mb"`
	CORSOrigins string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// DSN renders a lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	LimiterDB int    `yaml:"limiter_db"`
}

const (
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"
)

type StorageConfig struct {
	Driver          string        `yaml:"driver"`
	Bucket          string        `yaml:"bucket"`
	Prefix          string        `yaml:"prefix"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint"`
	AccessKey       string        `yaml:"access_key"`
	SecretKey       string        `yaml:"secret_key"`
	PublicHost      string        `yaml:"public_host"`
	LocalRoot       string        `yaml:"local_root"`
	SignedURLExpiry time.Duration `yaml:"signed_url_expiry"`
}

type RenderConfig struct {
	TemplatePath   string        `yaml:"template_path"`
	TemplateKey    string        `yaml:"template_key"`
	ChromePath     string        `yaml:"chrome_path"`
	NoSandbox      bool          `yaml:"no_sandbox"`
	Timeout        time.Duration `yaml:"timeout"`
	IdleSettle     time.Duration `yaml:"idle_settle"`
	GracePeriod    time.Duration `yaml:"grace_period"`
	RasterRetries  int           `yaml:"raster_retries"`
	ViewportWidth  int64         `yaml:"viewport_width"`
	ViewportHeight int64         `yaml:"viewport_height"`
	PaperWidthIn   float64       `yaml:"paper_width_in"`
	PaperHeightIn  float64       `yaml:"paper_height_in"`
	MarginMM       float64       `yaml:"margin_mm"`
	DefaultLogoURL string        `yaml:"default_logo_url"`
	InspectPages   bool          `yaml:"inspect_pages"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type WorkerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Concurrency int    `yaml:"concurrency"`
	QueueName   string `yaml:"queue_name"`
	MaxAttempts int    `yaml:"max_attempts"`
}

type LimiterConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:        "8080",
			BodyLimitMB: 10,
			CORSOrigins: "*",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Name:            "hojavida",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			LimiterDB: 1,
		},
		Storage: StorageConfig{
			Driver:          StorageDriverS3,
			Bucket:          "hojas_vida_logyser",
			Region:          "auto",
			Endpoint:        "https://storage.googleapis.com",
			PublicHost:      "storage.googleapis.com",
			LocalRoot:       "./data/storage",
			SignedURLExpiry: 7 * 24 * time.Hour,
		},
		Render: RenderConfig{
			NoSandbox:      true,
			Timeout:        60 * time.Second,
			IdleSettle:     500 * time.Millisecond,
			GracePeriod:    5 * time.Second,
			RasterRetries:  1,
			ViewportWidth:  1200,
			ViewportHeight: 800,
			PaperWidthIn:   8.27,
			PaperHeightIn:  11.69,
			MarginMM:       12,
			DefaultLogoURL: "https://storage.googleapis.com/logyser-recibo-public/logo.png",
			InspectPages:   true,
		},
		Catalog: CatalogConfig{
			CacheTTL: 30 * time.Minute,
		},
		Worker: WorkerConfig{
			Enabled:     true,
			Concurrency: 2,
			QueueName:   "hojavida:render_jobs",
			MaxAttempts: 3,
		},
		Limiter: LimiterConfig{
			Max:    30,
			Window: time.Minute,
		},
		Log: logx.Config{
			Level:      logx.LevelInfo,
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Console:    true,
		},
	}
}

// Load reads .env, the YAML file at CONFIG_PATH (when set) and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(os.Getenv("CONFIG_PATH"))
}

// LoadFrom builds the configuration from defaults, the YAML file at path (may
// be empty) and the environment, then validates it
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the services cannot run with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverS3, StorageDriverLocal:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("config: storage bucket is required")
	}
	if c.Storage.SignedURLExpiry <= 0 {
		return fmt.Errorf("config: signed url expiry must be positive")
	}
	if c.Render.Timeout <= 0 {
		return fmt.Errorf("config: render timeout must be positive")
	}
	if c.Render.IdleSettle < 0 || c.Render.GracePeriod < 0 {
		return fmt.Errorf("config: render waits must not be negative")
	}
	if c.Render.RasterRetries < 0 {
		return fmt.Errorf("config: raster retries must not be negative")
	}
	if c.Render.ViewportWidth <= 0 || c.Render.ViewportHeight <= 0 {
		return fmt.Errorf("config: viewport must be positive")
	}
	if c.Render.PaperWidthIn <= 0 || c.Render.PaperHeightIn <= 0 || c.Render.MarginMM < 0 {
		return fmt.Errorf("config: invalid page geometry")
	}
	if c.Worker.Concurrency < 0 || c.Worker.MaxAttempts < 1 {
		return fmt.Errorf("config: invalid worker settings")
	}
	if c.Limiter.Max < 0 {
		return fmt.Errorf("config: limiter max must not be negative")
	}
	return nil
}

func applyEnv(c *Config) {
	envString("PORT", &c.Server.Port)
	envString("STATIC_DIR", &c.Server.StaticDir)
	envString("CORS_ORIGINS", &c.Server.CORSOrigins)

	envString("DB_HOST", &c.Database.Host)
	envString("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASS", &c.Database.Password)
	envString("DB_NAME", &c.Database.Name)
	envString("DB_SSLMODE", &c.Database.SSLMode)
	envBool("DB_AUTO_MIGRATE", &c.Database.AutoMigrate)

	envString("REDIS_ADDR", &c.Redis.Addr)
	envString("REDIS_PASS", &c.Redis.Password)
	envInt("REDIS_DB", &c.Redis.DB)

	envString("STORAGE_DRIVER", &c.Storage.Driver)
	envString("GCS_BUCKET", &c.Storage.Bucket)
	envString("STORAGE_BUCKET", &c.Storage.Bucket)
	envString("STORAGE_PREFIX", &c.Storage.Prefix)
	envString("AWS_REGION", &c.Storage.Region)
	envString("STORAGE_ENDPOINT", &c.Storage.Endpoint)
	envString("STORAGE_ACCESS_KEY", &c.Storage.AccessKey)
	envString("STORAGE_SECRET_KEY", &c.Storage.SecretKey)
	envString("STORAGE_PUBLIC_HOST", &c.Storage.PublicHost)
	envString("STORAGE_LOCAL_ROOT", &c.Storage.LocalRoot)
	if v, ok := lookup("SIGNED_URL_EXPIRES_MS"); ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Storage.SignedURLExpiry = time.Duration(ms) * time.Millisecond
		}
	}

	envString("TEMPLATE_PATH", &c.Render.TemplatePath)
	envString("TEMPLATE_KEY", &c.Render.TemplateKey)
	envString("CHROME_BIN", &c.Render.ChromePath)
	envBool("CHROME_NO_SANDBOX", &c.Render.NoSandbox)
	envDuration("RENDER_TIMEOUT", &c.Render.Timeout)
	envDuration("RENDER_GRACE_PERIOD", &c.Render.GracePeriod)
	envInt("RENDER_RETRIES", &c.Render.RasterRetries)
	envString("LOGO_URL", &c.Render.DefaultLogoURL)

	envBool("WORKER_ENABLED", &c.Worker.Enabled)
	envInt("WORKER_CONCURRENCY", &c.Worker.Concurrency)

	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = logx.Level(strings.ToLower(v))
	}
	envString("LOG_FILE", &c.Log.File)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func envString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
