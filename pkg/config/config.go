package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Remote   RemoteConfig
	Catalog  CatalogConfig
	Metadata MetadataConfig
	Session  SessionConfig
	Tracking TrackingConfig
	Admin    AdminConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RemoteConfig locates the materials repository and the hosts that list or serve it.
type RemoteConfig struct {
	Repo           string
	Branch         string
	MaterialsPath  string
	Token          string
	APIBase        string
	MirrorBase     string
	RawContentBase string
	LFSContentBase string
	LFSExtensions  []string
	Timeout        time.Duration
}

// CatalogConfig tunes the cached materials listing and the subject registry source.
type CatalogConfig struct {
	CacheKey     string
	CacheTTL     time.Duration
	SubjectsFile string
}

// MetadataConfig toggles the usage counter store.
type MetadataConfig struct {
	Enabled bool
}

// SessionConfig governs the browsing session cookie used for the rating guard and search history.
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// TrackingConfig sizes the fire-and-forget counter write dispatcher.
type TrackingConfig struct {
	Workers    int
	BufferSize int
}

// AdminConfig holds the bcrypt hash of the admin bearer token. Empty disables admin routes.
type AdminConfig struct {
	TokenHash string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Remote = RemoteConfig{
		Repo:           strings.Trim(v.GetString("GITHUB_REPO"), "/"),
		Branch:         v.GetString("GITHUB_BRANCH"),
		MaterialsPath:  strings.Trim(v.GetString("MATERIALS_PATH"), "/"),
		Token:          v.GetString("GITHUB_TOKEN"),
		APIBase:        v.GetString("GITHUB_API_BASE"),
		MirrorBase:     v.GetString("JSDELIVR_BASE"),
		RawContentBase: strings.TrimRight(v.GetString("RAW_CONTENT_BASE"), "/"),
		LFSContentBase: strings.TrimRight(v.GetString("LFS_CONTENT_BASE"), "/"),
		LFSExtensions:  splitAndTrim(strings.ToLower(v.GetString("LFS_EXTENSIONS"))),
		Timeout:        parseDuration(v.GetString("REMOTE_TIMEOUT"), 10*time.Second),
	}

	cfg.Catalog = CatalogConfig{
		CacheKey:     v.GetString("CATALOG_CACHE_KEY"),
		CacheTTL:     parseDuration(v.GetString("CATALOG_CACHE_TTL"), 30*time.Minute),
		SubjectsFile: v.GetString("SUBJECTS_FILE"),
	}

	cfg.Metadata = MetadataConfig{Enabled: v.GetBool("METADATA_ENABLED")}

	cfg.Session = SessionConfig{
		Secret:     v.GetString("SESSION_SECRET"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		CookieName: v.GetString("SESSION_COOKIE"),
		Secure:     cfg.Env == EnvProduction,
	}

	cfg.Tracking = TrackingConfig{
		Workers:    v.GetInt("TRACKING_WORKERS"),
		BufferSize: v.GetInt("TRACKING_BUFFER"),
	}

	cfg.Admin = AdminConfig{TokenHash: v.GetString("ADMIN_TOKEN_HASH")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "klmaterial")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GITHUB_REPO", "praveenreddy8942-debug/klmaterial")
	v.SetDefault("GITHUB_BRANCH", "main")
	v.SetDefault("MATERIALS_PATH", "materials")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_BASE", "https://api.github.com")
	v.SetDefault("JSDELIVR_BASE", "https://data.jsdelivr.com")
	v.SetDefault("RAW_CONTENT_BASE", "https://raw.githubusercontent.com")
	v.SetDefault("LFS_CONTENT_BASE", "https://media.githubusercontent.com/media")
	v.SetDefault("LFS_EXTENSIONS", "pdf,doc,docx,ppt,pptx,zip,rar")
	v.SetDefault("REMOTE_TIMEOUT", "10s")

	v.SetDefault("CATALOG_CACHE_KEY", "catalog:materials")
	v.SetDefault("CATALOG_CACHE_TTL", "30m")
	v.SetDefault("SUBJECTS_FILE", "")

	v.SetDefault("METADATA_ENABLED", false)

	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE", "klm_session")

	v.SetDefault("TRACKING_WORKERS", 2)
	v.SetDefault("TRACKING_BUFFER", 256)

	v.SetDefault("ADMIN_TOKEN_HASH", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
