package backend

import (
	"context"

	"github.com/Carlos-Bolano/Pocka/internal/remote"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result bundles everything a backend provides. Subscriber is nil for
// backends that cannot push change events.
type Result struct {
	Store      remote.Store
	Identity   remote.Identity
	Subscriber remote.Subscriber
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleGoalsSheet         string
	GoogleTransactionsSheet  string
	GoogleCategoriesSheet    string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Identity for backends without their own account system
	UserID    string
	UserName  string
	UserEmail string
}

// Type identifies which storage backend to build.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
