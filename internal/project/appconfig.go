package project

import (
	"path/filepath"

	"github.com/piwi3910/platenest/internal/model"
)

// DefaultConfigPath returns ~/.platenest/config.json.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig writes config to path.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads the config at path over DefaultAppConfig, so fields
// absent from the file keep their defaults. A missing file yields the
// defaults and no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	if err := readJSON(path, &config); err != nil {
		if notExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	if config.RecentInputs == nil {
		config.RecentInputs = []string{}
	}
	return config, nil
}
