package auth

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Storage owns the process-wide database handle the repositories run on.
// Applications open the *sql.DB (any Bun-supported driver), hand it over
// here, and call Init once at startup and Close once at shutdown. The
// orchestrator never initializes storage itself; it only sees UserStore.
type Storage struct {
	db     *bun.DB
	logger Logger
}

// NewStorage wraps an open database handle with the Bun dialect the
// application selected.
func NewStorage(sqldb *sql.DB, dialect schema.Dialect) *Storage {
	return &Storage{
		db:     bun.NewDB(sqldb, dialect),
		logger: defLogger{},
	}
}

func (s *Storage) WithLogger(logger Logger) *Storage {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// DB exposes the Bun handle for repository construction
func (s *Storage) DB() *bun.DB {
	return s.db
}

// Init creates the schema this package owns. The unique email column is the
// arbiter for concurrent registrations; the orchestrator's pre-check is
// advisory only.
func (s *Storage) Init(ctx context.Context) error {
	if s.db == nil {
		return goerrors.New("storage has no database handle", goerrors.CategoryInternal)
	}

	if _, err := s.db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}

	s.logger.Debug("storage schema ready")

	return nil
}

// Close releases the underlying handle. Safe to call once after Init.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
