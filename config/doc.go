// Package config loads run configuration for liquidkit.
//
// It uses Viper to read a YAML (or JSON/TOML) file and godotenv to load a
// .env file, then overlays LIQUIDKIT_-prefixed environment variables before
// unmarshalling into the caller's struct.
//
// # Usage
//
//	var cfg RunnerConfig
//	err := config.LoadConfig("liquidkit", &cfg, config.WithConfigFile("deck.yml"))
//
// Environment variables map onto nested keys by splitting on underscores,
// so LIQUIDKIT_JOURNAL_PATH sets journal.path.
package config
