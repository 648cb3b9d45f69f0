package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/txmanager"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/types"
)

const (
	LockBackendRedis  = "redis"
	LockBackendMemory = "memory"

	BrainProviderGemini     = "gemini"
	BrainProviderOpenRouter = "openrouter"
	BrainProviderOffline    = "offline"

	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
	EmailProviderStub     = "stub"
)

// ErrInvalidConfig возвращается, когда конфигурация не проходит проверку
var ErrInvalidConfig = errors.New("invalid config")

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Lock     LockConfig     `toml:"lock"`
	Business BusinessConfig `toml:"business"`
	Booking  BookingConfig  `toml:"booking"`
	Brain    BrainConfig    `toml:"brain"`
	Email    EmailConfig    `toml:"email"`
	Admin    AdminConfig    `toml:"admin"`
}

// ServerConfig параметры HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды

	// SerializableRetries попытки сериализуемой транзакции при SQLSTATE 40001
	SerializableRetries int `toml:"serializable_retries"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL строка подключения в формате URL для golang-migrate
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// LockConfig блокировка дня на время чтения-проверки-записи
type LockConfig struct {
	Backend   string `toml:"backend"`
	TTLMs     int    `toml:"ttl_ms"`
	MaxWaitMs int    `toml:"max_wait_ms"`
}

func (c LockConfig) TTL() time.Duration     { return time.Duration(c.TTLMs) * time.Millisecond }
func (c LockConfig) MaxWait() time.Duration { return time.Duration(c.MaxWaitMs) * time.Millisecond }

type ServiceConfig struct {
	Key             string  `toml:"key"`
	Name            string  `toml:"name"`
	DurationMinutes int     `toml:"duration_minutes"`
	Price           float64 `toml:"price"`
}

// BusinessConfig профиль бизнеса и расписание
type BusinessConfig struct {
	Name                   string          `toml:"name"`
	Location               string          `toml:"location"` // адрес для письма-подтверждения
	Timezone               string          `toml:"timezone"`
	WorkDays               []string        `toml:"work_days"`
	DayStart               string          `toml:"day_start"`
	DayEnd                 string          `toml:"day_end"`
	LunchStart             string          `toml:"lunch_start"`
	LunchEnd               string          `toml:"lunch_end"`
	BaselineTime           string          `toml:"baseline_time"`
	BufferMinutes          *int            `toml:"buffer_minutes"`
	DefaultDurationMinutes int             `toml:"default_duration_minutes"`
	DefaultService         string          `toml:"default_service"`
	Services               []ServiceConfig `toml:"services"`
}

type BookingConfig struct {
	DateFallback string `toml:"date_fallback"`
}

// BrainConfig извлечение намерения
type BrainConfig struct {
	Provider  string   `toml:"provider"`
	TimeoutMs int      `toml:"timeout_ms"`
	Model     string   `toml:"model"`
	Models    []string `toml:"models"`
	Retries   int      `toml:"retries"`

	GeminiAPIKey     string `toml:"gemini_api_key"`
	OpenRouterAPIKey string `toml:"openrouter_api_key"`
	OpenRouterURL    string `toml:"openrouter_url"`
}

func (c BrainConfig) Timeout() time.Duration { return time.Duration(c.TimeoutMs) * time.Millisecond }

// ModelList все модели в порядке ротации; Model идет первой
func (c BrainConfig) ModelList() []string {
	out := make([]string, 0, len(c.Models)+1)
	if c.Model != "" {
		out = append(out, c.Model)
	}
	for _, m := range c.Models {
		if m != "" && m != c.Model {
			out = append(out, m)
		}
	}
	return out
}

type EmailConfig struct {
	Provider       string `toml:"provider"`
	From           string `toml:"from"`
	FromName       string `toml:"from_name"`
	Region         string `toml:"region"`
	SendGridAPIKey string `toml:"sendgrid_api_key"`
}

type AdminConfig struct {
	Token string `toml:"token"`
}

// Load читает TOML файл, подмешивает .env и переменные окружения, применяет значения по умолчанию
// Отсутствующий .env не является ошибкой
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"DB_PASSWORD", &c.Database.Password},
		{"REDIS_PASSWORD", &c.Redis.Password},
		{"GEMINI_API_KEY", &c.Brain.GeminiAPIKey},
		{"OPENROUTER_API_KEY", &c.Brain.OpenRouterAPIKey},
		{"SENDGRID_API_KEY", &c.Email.SendGridAPIKey},
		{"ADMIN_TOKEN", &c.Admin.Token},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	setInt(&c.Server.HTTPPort, 8080)
	setInt(&c.Server.ReadTimeout, 10)
	setInt(&c.Server.WriteTimeout, 30)
	setInt(&c.Server.IdleTimeout, 60)
	setInt(&c.Server.ShutdownTimeout, 10)

	setString(&c.Logs.Level, "info")

	setString(&c.Metrics.Path, "/metrics")
	setString(&c.Metrics.ServiceName, "appointment_agent")

	setString(&c.Database.Host, "localhost")
	setInt(&c.Database.Port, 5432)
	setString(&c.Database.SSLMode, "disable")
	setInt(&c.Database.MaxOpenConns, 25)
	setInt(&c.Database.MaxIdleConns, 5)
	setInt(&c.Database.ConnMaxLifetime, 300)
	setInt(&c.Database.SerializableRetries, txmanager.DefaultSerializableRetries)

	setString(&c.Redis.Addr, "localhost:6379")

	setString(&c.Lock.Backend, LockBackendMemory)
	setInt(&c.Lock.TTLMs, 5000)
	setInt(&c.Lock.MaxWaitMs, 3000)

	setString(&c.Business.Name, domain.DefaultBusinessName)
	setString(&c.Business.Timezone, domain.DefaultTimezone)
	if len(c.Business.WorkDays) == 0 {
		c.Business.WorkDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	}
	setString(&c.Business.DayStart, domain.DefaultDayStart)
	setString(&c.Business.DayEnd, domain.DefaultDayEnd)
	setString(&c.Business.LunchStart, domain.DefaultLunchStart)
	setString(&c.Business.LunchEnd, domain.DefaultLunchEnd)
	setString(&c.Business.BaselineTime, domain.DefaultBaselineTime)
	if c.Business.BufferMinutes == nil {
		buffer := domain.DefaultBufferMinutes
		c.Business.BufferMinutes = &buffer
	}
	setInt(&c.Business.DefaultDurationMinutes, domain.DefaultDurationMinutes)
	setString(&c.Business.DefaultService, domain.DefaultServiceKey)
	if len(c.Business.Services) == 0 {
		for _, s := range domain.DefaultBusinessRules().Services.All() {
			c.Business.Services = append(c.Business.Services, ServiceConfig{
				Key: s.Key, Name: s.Name, DurationMinutes: s.DurationMinutes, Price: s.Price,
			})
		}
	}

	setString(&c.Booking.DateFallback, string(domain.DateFallbackReject))

	setString(&c.Brain.Provider, BrainProviderOffline)
	setInt(&c.Brain.TimeoutMs, 8000)
	if c.Brain.Retries == 0 {
		c.Brain.Retries = 2
	}

	setString(&c.Email.Provider, EmailProviderStub)
	setString(&c.Email.FromName, domain.DefaultBusinessName)
}

// Validate проверяет диапазоны и допустимые значения
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535", ErrInvalidConfig)
	}
	if c.Database.SerializableRetries < 1 {
		return fmt.Errorf("%w: database.serializable_retries must be positive", ErrInvalidConfig)
	}
	if c.Database.MaxOpenConns < c.Database.MaxIdleConns {
		return fmt.Errorf("%w: database.max_open_conns must be >= max_idle_conns", ErrInvalidConfig)
	}

	switch c.Lock.Backend {
	case LockBackendRedis, LockBackendMemory:
	default:
		return fmt.Errorf("%w: lock.backend %q is not one of redis, memory", ErrInvalidConfig, c.Lock.Backend)
	}
	if c.Lock.TTLMs <= 0 || c.Lock.MaxWaitMs < 0 {
		return fmt.Errorf("%w: lock.ttl_ms must be positive and lock.max_wait_ms non-negative", ErrInvalidConfig)
	}

	switch c.Brain.Provider {
	case BrainProviderGemini, BrainProviderOpenRouter, BrainProviderOffline:
	default:
		return fmt.Errorf("%w: brain.provider %q is not one of gemini, openrouter, offline", ErrInvalidConfig, c.Brain.Provider)
	}
	if c.Brain.TimeoutMs <= 0 {
		return fmt.Errorf("%w: brain.timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.Brain.Retries < 0 {
		return fmt.Errorf("%w: brain.retries must not be negative", ErrInvalidConfig)
	}

	switch c.Email.Provider {
	case EmailProviderSendGrid, EmailProviderSES, EmailProviderStub:
	default:
		return fmt.Errorf("%w: email.provider %q is not one of sendgrid, ses, stub", ErrInvalidConfig, c.Email.Provider)
	}
	if c.Email.Provider != EmailProviderStub && c.Email.From == "" {
		return fmt.Errorf("%w: email.from is required for provider %s", ErrInvalidConfig, c.Email.Provider)
	}

	if _, err := c.BusinessRules(); err != nil {
		return fmt.Errorf("%w: business: %v", ErrInvalidConfig, err)
	}
	return nil
}

// BusinessRules собирает неизменяемые правила расписания из секций business и booking
func (c *Config) BusinessRules() (domain.BusinessRules, error) {
	b := c.Business

	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return domain.BusinessRules{}, fmt.Errorf("timezone %q: %w", b.Timezone, err)
	}

	workDays, err := domain.ParseWeekdays(b.WorkDays)
	if err != nil {
		return domain.BusinessRules{}, err
	}

	var dayStart, dayEnd, lunchStart, lunchEnd, baseline types.TimeString
	for _, f := range []struct {
		name  string
		value string
		dst   *types.TimeString
	}{
		{"day_start", b.DayStart, &dayStart},
		{"day_end", b.DayEnd, &dayEnd},
		{"lunch_start", b.LunchStart, &lunchStart},
		{"lunch_end", b.LunchEnd, &lunchEnd},
		{"baseline_time", b.BaselineTime, &baseline},
	} {
		ts, err := types.NewTimeStringFromString(f.value)
		if err != nil {
			return domain.BusinessRules{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = ts
	}

	services := make([]domain.Service, 0, len(b.Services))
	for _, s := range b.Services {
		services = append(services, domain.Service{
			Key: s.Key, Name: s.Name, DurationMinutes: s.DurationMinutes, Price: s.Price,
		})
	}
	catalog, err := domain.NewServiceCatalog(services, b.DefaultService)
	if err != nil {
		return domain.BusinessRules{}, err
	}

	buffer := domain.DefaultBufferMinutes
	if b.BufferMinutes != nil {
		buffer = *b.BufferMinutes
	}

	rules := domain.BusinessRules{
		BusinessName:           b.Name,
		Location:               loc,
		WorkDays:               workDays,
		DayStart:               dayStart,
		DayEnd:                 dayEnd,
		LunchStart:             lunchStart,
		LunchEnd:               lunchEnd,
		BaselineTime:           baseline,
		BufferMinutes:          buffer,
		DefaultDurationMinutes: b.DefaultDurationMinutes,
		DateFallback:           domain.DateFallbackPolicy(c.Booking.DateFallback),
		Services:               catalog,
	}
	if err := rules.Validate(); err != nil {
		return domain.BusinessRules{}, err
	}
	return rules, nil
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
