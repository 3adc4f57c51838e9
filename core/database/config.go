package database

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database connection settings.
type Config struct {
	Driver string `yaml:"driver" envconfig:"DB_DRIVER"`
	// DSN overrides the connection string assembled from the fields below.
	DSN string `yaml:"dsn" envconfig:"DB_DSN"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path" envconfig:"DB_PATH"`

	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Normalize fills defaults and validates the driver choice.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "", "sqlite3":
		c.Driver = DriverSQLite
	case "postgresql", "pg":
		c.Driver = DriverPostgres
	}
	switch c.Driver {
	case DriverSQLite:
		if c.DSN == "" && strings.TrimSpace(c.Path) == "" {
			c.Path = "data/cinebot.db"
		}
		// One writer keeps sqlite free of SQLITE_BUSY under concurrent handlers.
		c.MaxConnections = 1
	case DriverPostgres:
		if c.DSN == "" && c.Host == "" {
			return fmt.Errorf("database.host or database.dsn is required for postgres")
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
		if c.Port == "" {
			c.Port = "5432"
		}
		if c.MaxConnections <= 0 {
			c.MaxConnections = 10
		}
	default:
		return fmt.Errorf("unsupported database.driver %q; allowed: postgres, sqlite", c.Driver)
	}
	return nil
}

// ConnString returns the driver-specific data source name.
func (c Config) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == DriverSQLite {
		return "file:" + c.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// Target describes the database for logs without leaking credentials.
func (c Config) Target() string {
	if c.Driver == DriverSQLite {
		if c.Path != "" {
			return c.Path
		}
		return "dsn"
	}
	if c.Host == "" {
		return "dsn"
	}
	return c.Host + ":" + c.Port + "/" + c.Name
}
