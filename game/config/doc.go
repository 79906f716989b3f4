// Package config provides configuration management for the Mastermind game.
//
// The config package handles:
//   - Loading game rules from JSON files
//   - Caching loaded configurations
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each file in the configs directory holds one engine.GameConfig:
//
//	{
//	  "name": "classic",
//	  "description": "Six colors and blanks, four slots, ten attempts",
//	  "alphabet": ["red", "blue", "green", "yellow", "purple", "black", ""],
//	  "blank": "",
//	  "code_length": 4,
//	  "max_attempts": 10
//	}
//
// The file name without .json is the config ID used to create sessions.
// classic.json is the default when present; otherwise the first valid file
// is used, and an empty directory falls back to built-in classic rules.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("easy")
//	configs, err := manager.ListConfigs()
package config
