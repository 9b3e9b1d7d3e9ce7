package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mathi-naickan/opensaf-sub000/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/opensaf-sub000"
	configFileName = "config.yaml"
)

// GetDefaultConfigPathOrPanic returns the user's default configuration
// directory, panicking if the home directory cannot be determined — this
// only happens for a misconfigured process environment, not user input.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads the cluster configuration from a single specified
// directory. The directory holds config.yaml plus the servicegroups/,
// serviceunits/, serviceinstances/, and dependencyedges/ subdirectories
// watched by internal/reconciler's filesystem detector.
func LoadConfig(configPath string) (ClusterConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := DefaultClusterConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return ClusterConfig{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return ClusterConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}
