package db

import (
	"fmt"
	"time"
)

type Config struct {
	Driver       string           `mapstructure:"driver"`
	BlockQueries bool             `mapstructure:"blockQueries"`
	LogQueries   bool             `mapstructure:"logQueries"`
	Encryption   EncryptionConfig `mapstructure:"encryption"`
	Sqlite       SqliteConfig     `mapstructure:"sqlite"`
	Postgres     PostgresConfig   `mapstructure:"postgres"`
}

type EncryptionConfig struct {
	KeyFile string `mapstructure:"keyFile"`
	//Key is a HEX encoded AES key and takes precedence over KeyFile
	Key string `mapstructure:"key"`
}

type SqliteConfig struct {
	File          string `mapstructure:"file"`
	ResetDatabase bool   `mapstructure:"resetDatabase"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SslMode         bool          `mapstructure:"sslMode"`
	MigrationsDir   string        `mapstructure:"migrationsDir"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
}

func (c *Config) Validate() error {
	switch Type(c.Driver) {
	case SQLite:
		if c.Sqlite.File == "" {
			return fmt.Errorf("sqlite database file is undefined")
		}
	case Postgres:
		if c.Postgres.Host == "" || c.Postgres.Database == "" {
			return fmt.Errorf("postgres host and database are required")
		}
	default:
		return fmt.Errorf("DB type '%s' not supported", c.Driver)
	}
	if c.Encryption.Key == "" && c.Encryption.KeyFile == "" {
		return fmt.Errorf("encryption key or key file has to be defined")
	}
	return nil
}
