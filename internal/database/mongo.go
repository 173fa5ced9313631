package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"

	"github.com/rzcleanseal/leads-api/internal/config"
	"github.com/rzcleanseal/leads-api/internal/model"
)

// MongoStore stores each kind in its own MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zerolog.Logger
}

// NewMongoStore connects to cfg.URL and pings the primary.
//
// The database name comes from cfg.Name, then the URL path, then
// DefaultName.
func NewMongoStore(ctx context.Context, cfg *config.DatabaseConfig, logger *zerolog.Logger) (*MongoStore, error) {
	cs, err := connstring.ParseAndValidate(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mongodb url: %w", err)
	}

	timeout := connectTimeout(cfg)
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(uint64(cfg.MaxOpenConns)).
		SetMinPoolSize(uint64(min(cfg.MaxIdleConns, cfg.MaxOpenConns))).
		SetMaxConnIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(resolveName(cfg.Name, cs.Database)),
		log:    logger,
	}, nil
}

// CreateDocument implements DocumentStore.
func (s *MongoStore) CreateDocument(ctx context.Context, kind string, record model.Record) (string, error) {
	id := bson.NewObjectID()

	doc := bson.M(record.Clone())
	doc[model.IDField] = id

	if _, err := s.db.Collection(kind).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id.Hex(), nil
}

// GetDocuments implements DocumentStore. Documents come back in natural
// order, which for a plain collection is insertion order.
func (s *MongoStore) GetDocuments(ctx context.Context, kind string, filter model.Filter, limit int64) ([]model.Record, error) {
	query := bson.D{}
	for _, c := range filter {
		query = append(query, bson.E{Key: c.Field, Value: c.Value})
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.db.Collection(kind).Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, model.Record(doc))
	}
	return records, nil
}

// ListCollectionNames implements DocumentStore.
func (s *MongoStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.D{})
}

func (s *MongoStore) Name() string {
	return s.db.Name()
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	err := s.client.Disconnect(ctx)
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return nil
	}
	return err
}
