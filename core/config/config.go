package config

import (
	"reflect"
	"strings"

	"guesthub/core/calendar"
	"guesthub/core/hub"
	"guesthub/core/logger"
	"guesthub/core/server"
	"guesthub/core/store"
	"guesthub/feature/locks"
	"guesthub/feature/modes"
	"guesthub/feature/schedule"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Hub holds configuration for the device automation API.
	Hub hub.Config `mapstructure:"hub"`
	// Store holds configuration for the persisted visit/override store.
	Store store.Config `mapstructure:"store"`
	// Calendar holds configuration for the reservation feeds.
	Calendar calendar.Config `mapstructure:"calendar"`
	// Locks holds configuration for the lock programmer.
	Locks locks.Config `mapstructure:"locks"`
	// Modes holds configuration for the mode controller.
	Modes modes.Config `mapstructure:"modes"`
	// Schedule holds configuration for the reconciliation engine.
	Schedule schedule.Config `mapstructure:"schedule"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SCHEDULE_CHECKIN_TIME -> schedule.checkin_time)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
