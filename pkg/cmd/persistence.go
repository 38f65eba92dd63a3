// Package cmd holds construction helpers shared by the binaries.
package cmd

import (
	"strings"

	"github.com/graphflow/graphflow/pkg/persistence"
	"github.com/graphflow/graphflow/pkg/persistence/file"
	"github.com/graphflow/graphflow/pkg/persistence/postgresql"
)

// NewPersistence picks the persistence backend from the database URL
// scheme. postgres:// selects PostgreSQL; anything else is treated as a
// file path.
func NewPersistence(databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(databaseURL)
	default:
		return file.NewPersistence(databaseURL)
	}
}
