// Package database contains the document store the leads are kept in.
//
// It handles:
//   - picking a backend from DATABASE_URL (MongoDB, PostgreSQL JSONB, memory)
//   - connecting at startup and closing at shutdown
//   - the typed "unavailable" state the service runs in when no store
//     could be reached
//   - wrapping every backend failure into a *StorageError
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rzcleanseal/leads-api/internal/config"
	loggerPkg "github.com/rzcleanseal/leads-api/internal/logger"
	"github.com/rzcleanseal/leads-api/internal/metrics"
	"github.com/rzcleanseal/leads-api/internal/model"
	"github.com/rzcleanseal/leads-api/internal/sqlerr"
)

// DefaultName is the database name used when neither DATABASE_NAME nor
// the URL path provides one.
const DefaultName = "leads"

// ErrUnavailable is wrapped by every error returned while the store is
// not initialized.
var ErrUnavailable = errors.New("database not available")

// DocumentStore is the persistence adapter every backend implements.
//
// A collection exists per kind; records carry their identifier under
// model.IDField.
type DocumentStore interface {
	// CreateDocument inserts record into the kind collection and returns
	// the store-assigned identifier.
	CreateDocument(ctx context.Context, kind string, record model.Record) (string, error)

	// GetDocuments returns up to limit records of kind matching every
	// condition of filter, in insertion order. A zero limit is unbounded.
	GetDocuments(ctx context.Context, kind string, filter model.Filter, limit int64) ([]model.Record, error)

	// ListCollectionNames returns the names of the existing collections.
	ListCollectionNames(ctx context.Context) ([]string, error)

	// Name is the database name.
	Name() string

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// StorageError is returned for any failed store operation.
type StorageError struct {
	Op   string
	Kind string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Code is the application error code of the underlying SQL error, or
// "" when the backend gave none.
func (e *StorageError) Code() string {
	var sqlErr *sqlerr.Error
	if errors.As(e.Err, &sqlErr) {
		return sqlErr.AppCode
	}
	return ""
}

// State is the lifecycle state of the store handle.
type State int

const (
	StateUnavailable State = iota
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "unavailable"
}

// Database is the process-wide store handle. It is created once at
// startup, passed to whoever needs it, and closed at shutdown.
//
// It is never nil: when no backend could be opened it is in
// StateUnavailable and every operation fails with ErrUnavailable.
type Database struct {
	store  DocumentStore
	state  State
	reason error
	urlSet bool
	log    *zerolog.Logger

	slowThreshold time.Duration
}

// New opens the backend selected by cfg.Database.URL.
//
// Failure is not fatal: the error is logged and an unavailable handle
// is returned so the service can still start and report its state.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *Database {
	store, err := Open(ctx, cfg, logger, loggerService)
	if err != nil {
		logger.Error().Err(err).Msg("database unavailable, continuing without a store")
		db := NewUnavailable(err, logger)
		db.urlSet = cfg.Database.URL != ""
		return db
	}

	db := NewWithStore(store, logger)
	if cfg.Observability != nil {
		db.slowThreshold = cfg.Observability.Logging.SlowQueryThreshold
	}

	logger.Info().
		Str("database", store.Name()).
		Str("backend", Backend(cfg.Database.URL)).
		Msg("connected to the database")

	return db
}

// NewWithStore wraps an opened store in a connected handle.
func NewWithStore(store DocumentStore, logger *zerolog.Logger) *Database {
	return &Database{
		store:  store,
		state:  StateConnected,
		urlSet: true,
		log:    logger,
	}
}

// NewUnavailable returns a handle in StateUnavailable.
func NewUnavailable(reason error, logger *zerolog.Logger) *Database {
	if reason == nil {
		reason = errors.New("not initialized")
	}
	return &Database{
		state:  StateUnavailable,
		reason: reason,
		log:    logger,
	}
}

// Open connects the backend matching the URL scheme.
func Open(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (DocumentStore, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	switch Backend(cfg.Database.URL) {
	case "mongodb":
		return NewMongoStore(ctx, &cfg.Database, logger)
	case "postgres":
		return NewPostgresStore(ctx, cfg, logger, loggerService)
	case "memory":
		return NewMemoryStore(resolveName(cfg.Database.Name, strings.TrimPrefix(cfg.Database.URL, "memory://"))), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme %q (supported: mongodb, mongodb+srv, postgres, postgresql, memory)", scheme(cfg.Database.URL))
	}
}

// Backend names the backend a URL selects, or "" when none does.
func Backend(url string) string {
	switch scheme(url) {
	case "mongodb", "mongodb+srv":
		return "mongodb"
	case "postgres", "postgresql":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return ""
	}
}

// connectTimeout bounds connecting and the initial ping.
func connectTimeout(cfg *config.DatabaseConfig) time.Duration {
	if cfg.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(cfg.ConnectTimeout) * time.Second
}

func scheme(url string) string {
	i := strings.Index(url, "://")
	if i < 0 {
		return ""
	}
	return strings.ToLower(url[:i])
}

// resolveName picks the configured name, then the one from the URL,
// then DefaultName.
func resolveName(configured, fromURL string) string {
	if configured != "" {
		return configured
	}
	fromURL = strings.Trim(fromURL, "/")
	if i := strings.IndexAny(fromURL, "?/"); i >= 0 {
		fromURL = fromURL[:i]
	}
	if fromURL != "" {
		return fromURL
	}
	return DefaultName
}

// State reports whether the store is connected.
func (db *Database) State() State {
	return db.state
}

// Available is shorthand for State() == StateConnected.
func (db *Database) Available() bool {
	return db.state == StateConnected
}

// Reason is why the handle is unavailable; nil when connected.
func (db *Database) Reason() error {
	return db.reason
}

// URLSet reports whether a DATABASE_URL was configured.
func (db *Database) URLSet() bool {
	return db.urlSet
}

// Name is the database name, or "" when unavailable.
func (db *Database) Name() string {
	if !db.Available() {
		return ""
	}
	return db.store.Name()
}

func (db *Database) unavailable(op, kind string) error {
	return &StorageError{Op: op, Kind: kind, Err: fmt.Errorf("%w: %v", ErrUnavailable, db.reason)}
}

// CreateDocument implements DocumentStore.
func (db *Database) CreateDocument(ctx context.Context, kind string, record model.Record) (string, error) {
	if !db.Available() {
		return "", db.unavailable("insert", kind)
	}

	start := time.Now()
	id, err := db.store.CreateDocument(ctx, kind, record)
	db.observe("insert", kind, start, err)
	if err != nil {
		return "", wrap("insert", kind, err)
	}
	return id, nil
}

// GetDocuments implements DocumentStore.
func (db *Database) GetDocuments(ctx context.Context, kind string, filter model.Filter, limit int64) ([]model.Record, error) {
	if !db.Available() {
		return nil, db.unavailable("find", kind)
	}

	start := time.Now()
	records, err := db.store.GetDocuments(ctx, kind, filter, limit)
	db.observe("find", kind, start, err)
	if err != nil {
		return nil, wrap("find", kind, err)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

// ListCollectionNames implements DocumentStore.
func (db *Database) ListCollectionNames(ctx context.Context) ([]string, error) {
	if !db.Available() {
		return nil, db.unavailable("list collections", "")
	}

	start := time.Now()
	names, err := db.store.ListCollectionNames(ctx)
	db.observe("list_collections", "", start, err)
	if err != nil {
		return nil, wrap("list collections", "", err)
	}
	return names, nil
}

// Ping checks connectivity.
func (db *Database) Ping(ctx context.Context) error {
	if !db.Available() {
		return db.unavailable("ping", "")
	}
	if err := db.store.Ping(ctx); err != nil {
		return wrap("ping", "", err)
	}
	return nil
}

// Close releases the backend. Closing an unavailable handle is a no-op.
func (db *Database) Close(ctx context.Context) error {
	if !db.Available() {
		return nil
	}
	db.log.Info().Str("database", db.store.Name()).Msg("closing database connection")
	return db.store.Close(ctx)
}

func (db *Database) observe(op, kind string, start time.Time, err error) {
	metrics.ObserveStoreOperation(op, start, err)

	elapsed := time.Since(start)
	if err != nil {
		event := db.log.Error().Err(err).Str("op", op).Str("kind", kind).Dur("duration", elapsed)

		var sqlErr *sqlerr.Error
		if errors.As(err, &sqlErr) {
			event = event.
				Str("app_code", sqlErr.AppCode).
				Str("sql_state", sqlErr.DatabaseCode).
				Str("severity", sqlErr.Severity.String())
		}

		event.Msg("store operation failed")
		return
	}
	if db.slowThreshold > 0 && elapsed > db.slowThreshold {
		db.log.Warn().Str("op", op).Str("kind", kind).Dur("duration", elapsed).Msg("slow store operation")
	}
}

func wrap(op, kind string, err error) error {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &StorageError{Op: op, Kind: kind, Err: err}
}
