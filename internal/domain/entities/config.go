package entities

// CompressionConfig параметры локального оптимизатора, выведенные из уровня
type CompressionConfig struct {
	Level            CompressionLevel
	ImageQuality     int     // Качество изображений (10-100)
	ImageUpperPPI    float64 // Верхний предел разрешения изображений
	RemoveDuplicates bool
	CompressStreams  bool
	UniPDFLicenseKey string
}

// NewCompressionConfig создает конфигурацию сжатия на основе уровня
func NewCompressionConfig(level CompressionLevel) *CompressionConfig {
	return NewCompressionConfigWithLicense(level, "")
}

// NewCompressionConfigWithLicense создает конфигурацию сжатия с лицензионным ключом
func NewCompressionConfigWithLicense(level CompressionLevel, licenseKey string) *CompressionConfig {
	if !level.Valid() {
		level = DefaultLevel
	}
	preset := level.Preset()

	config := &CompressionConfig{
		Level:            level,
		ImageQuality:     preset.Quality,
		RemoveDuplicates: true,
		CompressStreams:  true,
		UniPDFLicenseKey: licenseKey,
	}

	switch level {
	case LevelLow:
		config.ImageUpperPPI = 300
	case LevelMedium:
		config.ImageUpperPPI = 200
	case LevelHigh:
		config.ImageUpperPPI = 150
	default:
		config.ImageUpperPPI = 100
	}

	return config
}

// Validate проверяет корректность конфигурации
func (c *CompressionConfig) Validate() error {
	if !c.Level.Valid() {
		return ErrInvalidCompressionLevel
	}
	if c.ImageQuality < 10 || c.ImageQuality > 100 {
		return ErrInvalidImageQuality
	}
	return nil
}
