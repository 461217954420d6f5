// Package config provides configuration management for guesthub.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Log: logging level and format
//   - Hub: device automation API endpoint and credentials
//   - Store: persisted visit/late-checkout store backend
//   - Calendar: reservation feed URLs and fetch retry policy
//   - Locks: lock programmer devices, slot and retry policy
//   - Modes: mode controller cooldown
//   - Schedule: check-in/check-out times, modes and reconciliation cadence
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Schedule.CheckinTime)
package config
