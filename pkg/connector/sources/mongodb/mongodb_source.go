// Package mongodb implements the document-store source connector
// backed by MongoDB. It discovers the database's collections and
// materializes each one into a tabular batch, normalizing BSON values
// to plain Go types along the way.
package mongodb

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lakeferry/lakeferry/pkg/config"
	"github.com/lakeferry/lakeferry/pkg/errors"
	"github.com/lakeferry/lakeferry/pkg/logger"
	"github.com/lakeferry/lakeferry/pkg/tabular"
)

// identityField is the store-generated key MongoDB adds to every
// document. It never reaches serialized output.
const identityField = "_id"

// Source is a MongoDB-backed source connector
type Source struct {
	cfg    *config.Config
	logger *zap.Logger

	client   *mongo.Client
	database *mongo.Database
}

// NewSource creates a new MongoDB source connector
func NewSource(cfg *config.Config) (*Source, error) {
	if cfg.Source.URI == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "missing required property: source URI")
	}
	if cfg.Source.Database == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "missing required property: source database")
	}

	return &Source{
		cfg:    cfg,
		logger: logger.With(zap.String("connector", "mongodb")),
	}, nil
}

// Open connects to the deployment and verifies liveness with a ping.
// The client uses Stable API v1 and the configured server selection
// timeout, so an unreachable deployment fails fast instead of hanging
// the run.
func (s *Source) Open(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(s.cfg.Source.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetServerSelectionTimeout(s.cfg.Migration.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to connect to MongoDB")
	}
	s.client = client

	if err := client.Ping(ctx, nil); err != nil {
		if isAuthError(err) {
			return errors.Wrap(err, errors.ErrorTypeAuthentication, "MongoDB authentication failed")
		}
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to ping MongoDB")
	}

	s.database = client.Database(s.cfg.Source.Database)

	s.logger.Info("source connection established",
		zap.String("database", s.cfg.Source.Database))

	return nil
}

// ListUnits returns the database's collection names, sorted so run
// order and logs stay deterministic.
func (s *Source) ListUnits(ctx context.Context) ([]string, error) {
	names, err := s.database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to list collections")
	}

	sort.Strings(names)
	return names, nil
}

// Extract counts the unit first and short-circuits empty collections
// without querying; otherwise it streams every document through a
// cursor into a batch. All errors are scoped to this unit.
func (s *Source) Extract(ctx context.Context, unit string) (*tabular.Batch, error) {
	coll := s.database.Collection(unit)

	count, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData,
			fmt.Sprintf("failed to count documents in %s", unit))
	}

	batch := tabular.NewBatch(identityField)
	if count == 0 {
		return batch, nil
	}

	s.logger.Info("extracting collection",
		zap.String("collection", unit),
		zap.Int64("documents", count))

	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData,
			fmt.Sprintf("failed to query %s", unit))
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData,
				fmt.Sprintf("failed to decode document in %s", unit))
		}
		batch.Append(normalizeDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData,
			fmt.Sprintf("cursor failed while reading %s", unit))
	}

	return batch, nil
}

// Close disconnects from the deployment. Safe to call more than once
// and before a successful Open.
func (s *Source) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	client := s.client
	s.client = nil
	s.database = nil

	if err := client.Disconnect(ctx); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to disconnect from MongoDB")
	}

	s.logger.Info("source connection closed")
	return nil
}

// isAuthError distinguishes credential rejection from plain
// connectivity failure; the driver reports both through Ping.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Authentication failed") ||
		strings.Contains(msg, "auth error")
}

// normalizeDocument converts a decoded BSON document into plain Go
// values so downstream serialization never sees driver types.
func normalizeDocument(doc bson.M) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for key, value := range doc {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC()
	case primitive.Decimal128:
		return v.String()
	case primitive.Binary:
		return base64.StdEncoding.EncodeToString(v.Data)
	case primitive.A:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case bson.M:
		return normalizeDocument(v)
	case bson.D:
		out := make(map[string]interface{}, len(v))
		for _, elem := range v {
			out[elem.Key] = normalizeValue(elem.Value)
		}
		return out
	default:
		return v
	}
}
