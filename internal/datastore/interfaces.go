// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"log/slog"

	"github.com/tsuchida/bunrui-go/internal/conf"
	"github.com/tsuchida/bunrui-go/internal/logging"
	"gorm.io/gorm"
)

// Interface abstracts the underlying database implementation and defines the
// operations the analysis pipeline and the API need.
type Interface interface {
	Open() error
	Close() error
	Save(result *AnalysisResult) error
	Get(id uint) (AnalysisResult, error)
	Delete(id uint) error
	Count(search string) (int64, error)
	List(page, pageSize int, search string) (ListPage, error)
	Statistics() (Statistics, error)
}

// ListPage is one page of results together with paging metadata. Page is
// the page actually served after clamping, which may differ from the page
// requested.
type ListPage struct {
	Results    []AnalysisResult
	Total      int64
	Page       int
	TotalPages int
	PageSize   int
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB       *gorm.DB
	Settings *conf.Settings
}

// New creates a new datastore based on the configured output, SQLite taking
// precedence when both are enabled. Returns nil when no output is enabled.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{DataStore: DataStore{Settings: settings}}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{DataStore: DataStore{Settings: settings}}
	default:
		return nil
	}
}

// getLogger returns the structured logger for datastore operations.
func getLogger() *slog.Logger {
	if l := logging.ForService("datastore"); l != nil {
		return l
	}
	return slog.Default()
}
