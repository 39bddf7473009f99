package storagebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/evanpr/kalender/internal/storage"
	memorystorage "github.com/evanpr/kalender/internal/storage/memory"
	sqlstorage "github.com/evanpr/kalender/internal/storage/sql"
)

type Config struct {
	StorageType string
	Database    sqlstorage.Config
}

func New(config Config) (storage.Storage, error) {
	switch config.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "postgres", "sqlite":
		dbConfig := config.Database
		if config.StorageType == "sqlite" {
			dbConfig.Driver = "sqlite3"
		} else {
			dbConfig.Driver = "postgres"
		}
		s := sqlstorage.New(dbConfig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type %s", config.StorageType)
	}
}
