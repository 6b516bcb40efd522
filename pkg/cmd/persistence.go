package cmd

import (
	"fmt"
	"strings"

	"github.com/ana-fx/mail-blast-sub001/pkg/persistence"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence/file"
	"github.com/ana-fx/mail-blast-sub001/pkg/persistence/redis"
)

// NewPersistence selects a storage backend from the database URL scheme.
// "redis://" URLs get the Redis backend; anything else falls back to
// file-based storage rooted at the URL path.
func NewPersistence(databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "redis":
		p, err := redis.NewPersistence(databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to connect to redis: %w", err))
		}

		return p
	default:
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://"))
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
