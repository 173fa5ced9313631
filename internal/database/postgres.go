package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rzcleanseal/leads-api/internal/config"
	loggerConfig "github.com/rzcleanseal/leads-api/internal/logger"
	"github.com/rzcleanseal/leads-api/internal/model"
	"github.com/rzcleanseal/leads-api/internal/sqlerr"
)

// PostgresStore keeps documents as JSONB rows of a single `documents`
// table. The kind column plays the role of the collection name and
// seq preserves insertion order.
type PostgresStore struct {
	Pool *pgxpool.Pool
	name string
	log  *zerolog.Logger
}

// multiTracer allows chaining multiple tracers.
//
// pgx supports a single Tracer in ConnConfig. This adapter runs several:
//   - New Relic tracer (for distributed tracing/APM)
//   - tracelog.TraceLog (for local SQL logging in "local" env)
type multiTracer struct {
	tracers []any
}

// TraceQueryStart implements pgx tracer interface, threading the
// context through every tracer that supports it.
func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

// TraceQueryEnd implements pgx tracer interface.
func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// NewPostgresStore creates an instrumented pool for cfg.Database.URL,
// applies the embedded migrations and pings the server.
//
// Behavior:
//   - Parse the URL into a pgxpool config and apply pool limits
//   - Attach New Relic tracer if available
//   - In local env: attach SQL tracelogger (and chain tracers if both exist)
//   - Migrate, create pool, ping it
func NewPostgresStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*PostgresStore, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MinConns = int32(min(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	if loggerService != nil && loggerService.GetApplication() != nil {
		pgxPoolConfig.ConnConfig.Tracer = nrpgx5.NewTracer()
	}

	// Query logging is noisy, local only.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)
		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		}

		if pgxPoolConfig.ConnConfig.Tracer != nil {
			pgxPoolConfig.ConnConfig.Tracer = &multiTracer{
				tracers: []any{pgxPoolConfig.ConnConfig.Tracer, localTracer},
			}
		} else {
			pgxPoolConfig.ConnConfig.Tracer = localTracer
		}
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout(&cfg.Database))
	defer cancel()

	if err := Migrate(ctx, logger, cfg.Database.URL); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	name := cfg.Database.Name
	if name == "" {
		name = resolveName("", pgxPoolConfig.ConnConfig.Database)
	}

	return &PostgresStore{
		Pool: pool,
		name: name,
		log:  logger,
	}, nil
}

// CreateDocument implements DocumentStore.
func (s *PostgresStore) CreateDocument(ctx context.Context, kind string, record model.Record) (string, error) {
	body := record.Clone()
	delete(body, model.IDField)

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}

	id := bson.NewObjectID().Hex()
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO documents (id, kind, body) VALUES ($1, $2, $3::jsonb)`,
		id, kind, string(encoded),
	)
	if err != nil {
		return "", sqlerr.ConvertPgError(err)
	}
	return id, nil
}

// GetDocuments implements DocumentStore. The filter is applied with
// JSONB containment, which is exact equality for top-level strings.
func (s *PostgresStore) GetDocuments(ctx context.Context, kind string, filter model.Filter, limit int64) ([]model.Record, error) {
	containment, err := json.Marshal(filter.Map())
	if err != nil {
		return nil, fmt.Errorf("encoding filter: %w", err)
	}

	// NULL means no limit.
	var limitArg *int64
	if limit > 0 {
		limitArg = &limit
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT id, body FROM documents
		WHERE kind = $1 AND body @> $2::jsonb
		ORDER BY seq
		LIMIT $3`,
		kind, string(containment), limitArg,
	)
	if err != nil {
		return nil, sqlerr.ConvertPgError(err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Record, error) {
		var id string
		var body []byte
		if err := row.Scan(&id, &body); err != nil {
			return nil, err
		}
		return decodeBody(id, body)
	})
	if err != nil {
		return nil, sqlerr.ConvertPgError(err)
	}
	return records, nil
}

// ListCollectionNames implements DocumentStore.
func (s *PostgresStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT DISTINCT kind FROM documents ORDER BY kind`)
	if err != nil {
		return nil, sqlerr.ConvertPgError(err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, sqlerr.ConvertPgError(err)
	}
	return names, nil
}

func (s *PostgresStore) Name() string {
	return s.name
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// Close closes the pool. pgxpool.Close does not report errors.
func (s *PostgresStore) Close(context.Context) error {
	s.Pool.Close()
	return nil
}

func decodeBody(id string, body []byte) (model.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	record := model.Record{}
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	record[model.IDField] = id
	return record, nil
}
