package entities

import "time"

// Config представляет конфигурацию приложения
type Config struct {
	Service     ServiceConfig        `yaml:"service"`
	Compression AppCompressionConfig `yaml:"compression"`
	Processing  ProcessingConfig     `yaml:"processing"`
	Output      OutputConfig         `yaml:"output"`
}

// ServiceConfig настройки удаленного сервиса сжатия
type ServiceConfig struct {
	BaseURL                string `yaml:"base_url" validate:"required,url"`
	HealthTimeoutSeconds   int    `yaml:"health_timeout_seconds" validate:"min=1"`
	SingleTimeoutSeconds   int    `yaml:"single_timeout_seconds" validate:"min=1"`
	BatchTimeoutSeconds    int    `yaml:"batch_timeout_seconds" validate:"min=1"`
	ReprobeIntervalSeconds int    `yaml:"reprobe_interval_seconds" validate:"min=0"`
}

// AppCompressionConfig настройки сжатия приложения
type AppCompressionConfig struct {
	Level            string `yaml:"level" validate:"oneof=low medium high extreme"`
	BatchMode        bool   `yaml:"batch_mode"`
	MaxFileSizeMB    int    `yaml:"max_file_size_mb" validate:"min=1,max=100"`
	FallbackEngine   string `yaml:"fallback_engine" validate:"oneof=simulate pdfcpu unipdf"`
	UniPDFLicenseKey string `yaml:"unipdf_license_key" validate:"required_if=FallbackEngine unipdf"`
	AutoStart        bool   `yaml:"auto_start"`
}

// ProcessingConfig настройки обработки
type ProcessingConfig struct {
	ParallelWorkers int `yaml:"parallel_workers" validate:"min=1,max=16"`
	ProgressTickMS  int `yaml:"progress_tick_ms" validate:"min=10"`
}

// OutputConfig настройки вывода
type OutputConfig struct {
	TargetDirectory string `yaml:"target_directory" validate:"required"`
	LogLevel        string `yaml:"log_level" validate:"oneof=debug info warning error"`
	LogToFile       bool   `yaml:"log_to_file"`
	LogFileName     string `yaml:"log_file_name" validate:"required_if=LogToFile true"`
	LogMaxSizeMB    int    `yaml:"log_max_size_mb" validate:"min=0"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:              "http://localhost:5000/api",
			HealthTimeoutSeconds: 10,
			SingleTimeoutSeconds: 180,
			BatchTimeoutSeconds:  300,
		},
		Compression: AppCompressionConfig{
			Level:          string(DefaultLevel),
			MaxFileSizeMB:  100,
			FallbackEngine: "simulate",
		},
		Processing: ProcessingConfig{
			ParallelWorkers: 2,
			ProgressTickMS:  200,
		},
		Output: OutputConfig{
			TargetDirectory: "./compressed",
			LogLevel:        "info",
			LogToFile:       true,
			LogFileName:     "compressor.log",
			LogMaxSizeMB:    10,
		},
	}
}

// DefaultLevel уровень сжатия из конфигурации
func (c *AppCompressionConfig) DefaultLevel() CompressionLevel {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return DefaultLevel
	}
	return level
}

// MaxFileSize предельный размер файла в байтах
func (c *AppCompressionConfig) MaxFileSize() int64 {
	if c.MaxFileSizeMB <= 0 {
		return MaxFileSize
	}
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// HealthTimeout таймаут проверки доступности
func (c *ServiceConfig) HealthTimeout() time.Duration {
	return seconds(c.HealthTimeoutSeconds, 10*time.Second)
}

// SingleTimeout таймаут запроса сжатия одного файла
func (c *ServiceConfig) SingleTimeout() time.Duration {
	return seconds(c.SingleTimeoutSeconds, 3*time.Minute)
}

// BatchTimeout таймаут пакетного запроса
func (c *ServiceConfig) BatchTimeout() time.Duration {
	return seconds(c.BatchTimeoutSeconds, 5*time.Minute)
}

// ReprobeInterval период повторной проверки; 0 - отключено
func (c *ServiceConfig) ReprobeInterval() time.Duration {
	if c.ReprobeIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ReprobeIntervalSeconds) * time.Second
}

// ProgressTick интервал обновления индикатора прогресса
func (c *ProcessingConfig) ProgressTick() time.Duration {
	if c.ProgressTickMS <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(c.ProgressTickMS) * time.Millisecond
}

func seconds(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}
