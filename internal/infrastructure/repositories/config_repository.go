package repositories

import (
	"papertube-compress/internal/domain/entities"
)

// ConfigRepository реализация репозитория конфигурации
type ConfigRepository struct {
	licenseKey string
}

// NewConfigRepository создает новый репозиторий конфигурации
func NewConfigRepository(licenseKey string) *ConfigRepository {
	return &ConfigRepository{licenseKey: licenseKey}
}

// GetCompressionConfig получает конфигурацию сжатия по уровню
func (r *ConfigRepository) GetCompressionConfig(level entities.CompressionLevel) (*entities.CompressionConfig, error) {
	if !level.Valid() {
		return nil, entities.ErrInvalidCompressionLevel
	}
	return entities.NewCompressionConfigWithLicense(level, r.licenseKey), nil
}

// ValidateConfig валидирует конфигурацию
func (r *ConfigRepository) ValidateConfig(config *entities.CompressionConfig) error {
	return config.Validate()
}
