// Package config provides configuration management for the Boop game server.
//
// The config package handles:
//   - Loading game configurations from JSON or YAML files
//   - Configuration validation
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Configurations live in the configs directory as name.json, name.yaml or
// name.yml. The file name without extension is the config ID used when
// creating sessions. Each configuration defines the board dimensions, the
// per-player kitten and cat limits, the starting pools and which player
// moves first. Omitted fields take the classic values.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("small")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default is "classic" when present, otherwise the first valid file,
// otherwise the built-in 6x6 rules.
package config
