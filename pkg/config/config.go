package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Env         string
	Port        int
	APIPrefix   string
	StoreDriver string
	Timezone    string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Catalog  CatalogConfig
	Booking  BookingConfig
	Chat     ChatConfig
	Schedule ScheduleConfig
	Wallet   WalletConfig
	Jobs     JobsConfig
	Storage  StorageConfig

	ShutdownTimeout time.Duration
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig tunes the teacher catalog snapshot cache.
type CatalogConfig struct {
	CacheTTL time.Duration
}

// BookingConfig drives the booking wizard.
type BookingConfig struct {
	WindowDays     int
	DraftTTL       time.Duration
	MeetingBaseURL string
}

// ChatConfig controls the automated teacher reply.
type ChatConfig struct {
	ReplyDelay time.Duration
	ReplyText  string
}

// ScheduleConfig holds the cancellation policy window.
type ScheduleConfig struct {
	CancellationFeeWindow time.Duration
}

// WalletConfig controls withdrawal settlement.
type WalletConfig struct {
	SettlementDelay time.Duration
}

// StorageConfig locates shared statement files and signs their links.
type StorageConfig struct {
	Dir        string
	LinkSecret string
	LinkTTL    time.Duration
}

// JobsConfig configures background workers and cron schedules.
type JobsConfig struct {
	Enabled              bool
	NotificationWorkers  int
	NotificationRetries  int
	CompleteClassesSpec  string
	SettleWithdrawalSpec string
	PurgeDraftsSpec      string
	CleanupSessionsSpec  string
	SweepFilesSpec       string
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
		var pathErr interface{ Timeout() bool }
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.StoreDriver = strings.ToLower(v.GetString("STORE_DRIVER"))
	cfg.Timezone = v.GetString("TIMEZONE")
	cfg.ShutdownTimeout = parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 15*time.Second)

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		CacheTTL: parseDuration(v.GetString("CATALOG_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Booking = BookingConfig{
		WindowDays:     v.GetInt("BOOKING_WINDOW_DAYS"),
		DraftTTL:       parseDuration(v.GetString("BOOKING_DRAFT_TTL"), 30*time.Minute),
		MeetingBaseURL: strings.TrimRight(v.GetString("MEETING_BASE_URL"), "/"),
	}

	cfg.Chat = ChatConfig{
		ReplyDelay: parseDuration(v.GetString("CHAT_REPLY_DELAY"), 2*time.Second),
		ReplyText:  v.GetString("CHAT_REPLY_TEXT"),
	}

	cfg.Schedule = ScheduleConfig{
		CancellationFeeWindow: parseDuration(v.GetString("CANCELLATION_FEE_WINDOW"), 24*time.Hour),
	}

	cfg.Wallet = WalletConfig{
		SettlementDelay: parseDuration(v.GetString("WITHDRAWAL_SETTLEMENT_DELAY"), 48*time.Hour),
	}

	cfg.Jobs = JobsConfig{
		Enabled:              v.GetBool("JOBS_ENABLED"),
		NotificationWorkers:  v.GetInt("JOBS_NOTIFICATION_WORKERS"),
		NotificationRetries:  v.GetInt("JOBS_NOTIFICATION_RETRIES"),
		CompleteClassesSpec:  v.GetString("JOBS_COMPLETE_CLASSES_SPEC"),
		SettleWithdrawalSpec: v.GetString("JOBS_SETTLE_WITHDRAWALS_SPEC"),
		PurgeDraftsSpec:      v.GetString("JOBS_PURGE_DRAFTS_SPEC"),
		CleanupSessionsSpec:  v.GetString("JOBS_CLEANUP_SESSIONS_SPEC"),
		SweepFilesSpec:       v.GetString("JOBS_SWEEP_FILES_SPEC"),
	}

	cfg.Storage = StorageConfig{
		Dir:        v.GetString("STORAGE_DIR"),
		LinkSecret: v.GetString("STORAGE_LINK_SECRET"),
		LinkTTL:    parseDuration(v.GetString("STORAGE_LINK_TTL"), time.Hour),
	}
	if cfg.Storage.LinkSecret == "" {
		cfg.Storage.LinkSecret = cfg.JWT.Secret
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "discipulus")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "discipulus-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CATALOG_CACHE_TTL", "10m")

	v.SetDefault("BOOKING_WINDOW_DAYS", 14)
	v.SetDefault("BOOKING_DRAFT_TTL", "30m")
	v.SetDefault("MEETING_BASE_URL", "https://meet.discipulus.app")

	v.SetDefault("CHAT_REPLY_DELAY", "2s")
	v.SetDefault("CHAT_REPLY_TEXT", "Obrigado pela sua mensagem! Vou responder em breve. Enquanto isso, que tal agendar uma aula para discutirmos melhor?")

	v.SetDefault("CANCELLATION_FEE_WINDOW", "24h")
	v.SetDefault("WITHDRAWAL_SETTLEMENT_DELAY", "48h")

	v.SetDefault("JOBS_ENABLED", true)
	v.SetDefault("JOBS_NOTIFICATION_WORKERS", 2)
	v.SetDefault("JOBS_NOTIFICATION_RETRIES", 3)
	v.SetDefault("JOBS_COMPLETE_CLASSES_SPEC", "*/5 * * * *")
	v.SetDefault("JOBS_SETTLE_WITHDRAWALS_SPEC", "0 * * * *")
	v.SetDefault("JOBS_PURGE_DRAFTS_SPEC", "*/10 * * * *")
	v.SetDefault("JOBS_CLEANUP_SESSIONS_SPEC", "30 3 * * *")
	v.SetDefault("JOBS_SWEEP_FILES_SPEC", "15 * * * *")

	v.SetDefault("STORAGE_DIR", "./storage")
	v.SetDefault("STORAGE_LINK_SECRET", "")
	v.SetDefault("STORAGE_LINK_TTL", "1h")
}

func isMissingFile(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such file or directory")
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
