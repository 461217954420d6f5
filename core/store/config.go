package store

// Config holds configuration for the persisted visit/override store.
type Config struct {
	// Backend selects the store implementation ("file" or "database").
	Backend string `mapstructure:"backend" default:"file"`
	// Path is the directory holding the JSON documents of the file backend.
	Path string `mapstructure:"path" default:"data"`
	// WriteCooldownSeconds is how long after our own write external change
	// notifications are ignored, to avoid reprocessing self-inflicted writes.
	WriteCooldownSeconds int `mapstructure:"write_cooldown_seconds" default:"2"`
	// Database holds connection settings for the database backend.
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig holds configuration for the database backend.
type DatabaseConfig struct {
	// Driver is the database driver (sqlite, mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Name is the database name, or the file path for sqlite.
	Name string `mapstructure:"name" default:"guesthub.db"`
	// Host is the database host (mysql only).
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port (mysql only).
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user (mysql only).
	User string `mapstructure:"user" default:"root"`
	// Password is the database password (mysql only).
	Password string `mapstructure:"password" default:""`
	// TimeoutSeconds is the connection timeout in seconds (mysql only).
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// IsValidBackend checks if the configured backend is known.
func (c Config) IsValidBackend() bool {
	switch c.Backend {
	case BackendFile, BackendDatabase:
		return true
	default:
		return false
	}
}

const (
	BackendFile     = "file"
	BackendDatabase = "database"
)
