package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/talklike/pkg/definition"
	"github.com/matzehuels/talklike/pkg/errors"
	tio "github.com/matzehuels/talklike/pkg/io"
)

// MongoConfig locates the filter collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// Defaults for an empty MongoConfig.
const (
	DefaultMongoDatabase   = "talklike"
	DefaultMongoCollection = "filters"
)

// MongoSource stores definitions as documents keyed by filter id. The
// definition itself is kept verbatim in its original format, so a filter
// pushed as YAML comes back byte-for-byte.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDocument struct {
	ID          string    `bson:"_id"`
	Description string    `bson:"description,omitempty"`
	Format      string    `bson:"format"`
	Body        string    `bson:"body,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// NewMongoSource connects to MongoDB.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoSource{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoSource) Name() string { return "mongo" }

func (s *MongoSource) Load(ctx context.Context, id string) (*definition.Definition, error) {
	id = NormalizeID(id)
	var doc mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, NotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load %s", id)
	}
	return doc.definition()
}

func (s *MongoSource) List(ctx context.Context) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"body": 0})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list filters")
	}
	var docs []mongoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list filters")
	}
	entries := make([]Entry, len(docs))
	for i, d := range docs {
		entries[i] = Entry{ID: d.ID, Name: DisplayName(d.ID), Description: d.Description, Source: s.Name()}
	}
	return entries, nil
}

// Put stores def under id, replacing any existing document.
func (s *MongoSource) Put(ctx context.Context, id string, def *definition.Definition, format tio.Format) error {
	doc, err := newMongoDocument(id, def, format)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "store %s", doc.ID)
	}
	return nil
}

// Delete removes id. Deleting a missing id is reported as not found.
func (s *MongoSource) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": NormalizeID(id)})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete %s", id)
	}
	if res.DeletedCount == 0 {
		return NotFound(id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func newMongoDocument(id string, def *definition.Definition, format tio.Format) (mongoDocument, error) {
	id = NormalizeID(id)
	if err := errors.ValidateFilterName(id); err != nil {
		return mongoDocument{}, err
	}
	if err := def.Validate(); err != nil {
		return mongoDocument{}, err
	}
	if def.Script != nil && def.Script.Lua == "" {
		return mongoDocument{}, errors.Configuration("script file %q must be inlined before storing", def.Script.File)
	}
	body, err := tio.Encode(def, format)
	if err != nil {
		return mongoDocument{}, err
	}
	return mongoDocument{
		ID:          id,
		Description: def.Description,
		Format:      string(format),
		Body:        string(body),
		UpdatedAt:   time.Now().UTC(),
	}, nil
}

func (d mongoDocument) definition() (*definition.Definition, error) {
	format, err := tio.ParseFormat(d.Format)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", d.ID, err)
	}
	def, err := tio.Decode([]byte(d.Body), format)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", d.ID, err)
	}
	if def.Name == "" {
		def.Name = d.ID
	}
	return def, nil
}
