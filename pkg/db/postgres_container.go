package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresPort = 5432

type PostgresContainerSettings struct {
	Image    string
	Database string
	User     string
	Password string
}

//PostgresContainer provisions a throwaway postgres database, used by integration tests
type PostgresContainer struct {
	testcontainers.Container
	settings PostgresContainerSettings
	host     string
	port     int
}

func StartPostgresContainer(ctx context.Context, settings PostgresContainerSettings) (*PostgresContainer, error) {
	if settings.Image == "" {
		settings.Image = "postgres:14-alpine"
	}
	port := nat.Port(strconv.Itoa(postgresPort) + "/tcp")
	dbURL := func(p nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable",
			settings.User, settings.Password, p.Port(), settings.Database)
	}

	name := "emc-postgres-" + uuid.NewString()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        settings.Image,
			ExposedPorts: []string{string(port)},
			WaitingFor:   wait.ForSQL(port, "postgres", dbURL),
			Name:         name,
			Labels:       map[string]string{"name": name},
			Env: map[string]string{
				"POSTGRES_PASSWORD": settings.Password,
				"POSTGRES_USER":     settings.User,
				"POSTGRES_DB":       settings.Database,
			},
			AutoRemove: true,
		},
		Started: true,
	})
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		return nil, err
	}
	return &PostgresContainer{
		Container: container,
		settings:  settings,
		host:      host,
		port:      mapped.Int(),
	}, nil
}

//Config returns the database configuration pointing to the container
func (c *PostgresContainer) Config(encryptionKey string) Config {
	return Config{
		Driver:       string(Postgres),
		BlockQueries: true,
		Encryption:   EncryptionConfig{Key: encryptionKey},
		Postgres: PostgresConfig{
			Host:     c.host,
			Port:     c.port,
			Database: c.settings.Database,
			User:     c.settings.User,
			Password: c.settings.Password,
		},
	}
}
