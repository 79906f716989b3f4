package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config cannot be nil", ErrInvalidConfig)
	}

	// Validate alphabet
	if len(config.Alphabet) == 0 {
		return fmt.Errorf("%w: alphabet cannot be empty", ErrInvalidConfig)
	}
	if len(config.Alphabet) > MaxAlphabetSize {
		return fmt.Errorf("%w: alphabet can have at most %d symbols, got %d", ErrInvalidConfig, MaxAlphabetSize, len(config.Alphabet))
	}
	seen := make(map[Symbol]bool, len(config.Alphabet))
	for i, s := range config.Alphabet {
		if seen[s] {
			return fmt.Errorf("%w: duplicate symbol %q at position %d", ErrInvalidConfig, s, i)
		}
		seen[s] = true
	}
	if !seen[config.Blank] {
		return fmt.Errorf("%w: blank symbol %q must be part of the alphabet", ErrInvalidConfig, config.Blank)
	}

	// Validate code length and attempt budget
	if config.CodeLength <= 0 || config.CodeLength > MaxCodeLength {
		return fmt.Errorf("%w: code_length must be between 1 and %d, got %d", ErrInvalidConfig, MaxCodeLength, config.CodeLength)
	}
	if config.MaxAttempts < 0 {
		return fmt.Errorf("%w: max_attempts must be non-negative, got %d", ErrInvalidConfig, config.MaxAttempts)
	}

	return nil
}

// DefaultConfig returns the classic game: six colors plus blank, four slots, ten attempts
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Six colors and blanks, four slots, ten attempts",
		Alphabet:    DefaultAlphabet(),
		Blank:       DefaultBlank,
		CodeLength:  DefaultCodeLength,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	config, err := LoadGameConfig(filepath.Join("configs", configName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: config file '%s' not found", ErrConfigNotFound, configName)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}
