// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Cache   CacheConfig   `koanf:"cache"`
	Search  SearchConfig  `koanf:"search"`
	Dataset DatasetConfig `koanf:"dataset"`
	Replay  ReplayConfig  `koanf:"replay"`
	Export  ExportConfig  `koanf:"export"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name            string        `koanf:"name"`
	Version         string        `koanf:"version"`
	Environment     string        `koanf:"environment"` // development, staging, production
	Debug           bool          `koanf:"debug"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file, discard
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig - настройки кэширования результатов поиска
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
	KeyPrefix  string        `koanf:"key_prefix"`
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SearchConfig - настройки поиска кратчайшего пути
type SearchConfig struct {
	Strategy    string `koanf:"strategy"`     // linear, heap
	Trace       string `koanf:"trace"`        // full, none
	MaxVertices int    `koanf:"max_vertices"` // 0 - без ограничения
}

// DatasetConfig - расположение файлов с картой
type DatasetConfig struct {
	Dir           string `koanf:"dir"`
	DistancesFile string `koanf:"distances_file"`
	PositionsFile string `koanf:"positions_file"`
}

// ReplayConfig - настройки пошагового проигрывания
type ReplayConfig struct {
	StepDelay time.Duration `koanf:"step_delay"`
}

// ExportConfig - настройки экспорта результата
type ExportConfig struct {
	Format string `koanf:"format"` // json, csv, xlsx, markdown, pdf
	Output string `koanf:"output"`
	Author string `koanf:"author"`
}

// MinReplayDelay минимальная задержка между кадрами
const MinReplayDelay = 50 * time.Millisecond

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be within [0, 1], got %v", c.Tracing.SampleRate))
	}

	validDrivers := map[string]bool{"memory": true, "redis": true}
	if c.Cache.Enabled && !validDrivers[c.Cache.Driver] {
		errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, got %s", c.Cache.Driver))
	}

	validStrategies := map[string]bool{"linear": true, "heap": true}
	if !validStrategies[c.Search.Strategy] {
		errs = append(errs, fmt.Sprintf("search.strategy must be one of: linear, heap, got %s", c.Search.Strategy))
	}

	validTraces := map[string]bool{"full": true, "none": true}
	if !validTraces[c.Search.Trace] {
		errs = append(errs, fmt.Sprintf("search.trace must be one of: full, none, got %s", c.Search.Trace))
	}

	if c.Search.MaxVertices < 0 {
		errs = append(errs, "search.max_vertices must be non-negative")
	}

	if c.Replay.StepDelay < MinReplayDelay {
		c.Replay.StepDelay = MinReplayDelay
	}

	validFormats := map[string]bool{"": true, "json": true, "csv": true, "xlsx": true, "excel": true, "markdown": true, "md": true, "pdf": true}
	if !validFormats[c.Export.Format] {
		errs = append(errs, fmt.Sprintf("export.format must be one of: json, csv, xlsx, markdown, pdf, got %s", c.Export.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
