package source

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/pageviz/pkg/cache"
	"github.com/matzehuels/pageviz/pkg/errors"
)

// mongoTimeout bounds a single round trip to the server.
const mongoTimeout = 10 * time.Second

// Mongo serves outlines stored one per document in a MongoDB collection.
//
// Stored documents use the outline wire layout:
//
//	{"_id": ObjectId(...), "doc_name": "...", "structure": [{"title": "...", "nodes": [...]}]}
type Mongo struct {
	client     *mongo.Client
	database   string
	collection string
	owned      bool
}

// MongoOptions configures [NewMongo].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// mongoSection mirrors the stored outline. Title is a pointer so a missing
// title survives the round trip and is rejected by the outline decoder.
type mongoSection struct {
	Title      *string         `bson:"title" json:"title"`
	Summary    *string         `bson:"summary,omitempty" json:"summary,omitempty"`
	StartIndex *int            `bson:"start_index,omitempty" json:"start_index,omitempty"`
	EndIndex   *int            `bson:"end_index,omitempty" json:"end_index,omitempty"`
	NodeID     *string         `bson:"node_id,omitempty" json:"node_id,omitempty"`
	Nodes      []*mongoSection `bson:"nodes,omitempty" json:"nodes,omitempty"`
}

type mongoDocument struct {
	ID        any             `bson:"_id" json:"-"`
	DocName   string          `bson:"doc_name" json:"doc_name"`
	Structure []*mongoSection `bson:"structure" json:"structure"`
	UpdatedAt time.Time       `bson:"updated_at,omitempty" json:"-"`
}

// NewMongo connects to opts.URI and returns a source over the collection.
// The connection is owned by the source and released by Close.
func NewMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if opts.Database == "" || opts.Collection == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo database and collection are required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI).SetTimeout(mongoTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.URI, err)
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return classify(client.Ping(ctx, nil), "ping")
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	m := NewMongoFromClient(client, opts.Database, opts.Collection)
	m.owned = true
	return m, nil
}

// NewMongoFromClient returns a source using an existing client. Close does
// not disconnect it.
func NewMongoFromClient(client *mongo.Client, database, collection string) *Mongo {
	return &Mongo{client: client, database: database, collection: collection}
}

func (m *Mongo) coll() *mongo.Collection {
	return m.client.Database(m.database).Collection(m.collection)
}

// Name implements Source.
func (m *Mongo) Name() string { return "mongo:" + m.database + "." + m.collection }

// List implements Source. Only ids, names and timestamps are loaded.
func (m *Mongo) List(ctx context.Context) ([]Entry, error) {
	findOpts := options.Find().
		SetProjection(bson.D{{Key: "doc_name", Value: 1}, {Key: "updated_at", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := m.coll().Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, classify(err, "list")
	}
	var docs []mongoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(err, "list")
	}

	out := make([]Entry, 0, len(docs))
	for _, d := range docs {
		key := idString(d.ID)
		name := d.DocName
		if name == "" {
			name = key
		}
		out = append(out, Entry{Key: key, Name: name, ModTime: d.UpdatedAt})
	}
	return out, nil
}

// Fetch implements Source. key is the hex form of an ObjectID or a string id.
func (m *Mongo) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := errors.ValidateDocName(key); err != nil {
		return nil, err
	}
	var doc mongoDocument
	err := m.coll().FindOne(ctx, bson.D{{Key: "_id", Value: idFilter(key)}}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeNotFound, "document %q not found in %s", key, m.Name())
	}
	if err != nil {
		return nil, classify(err, "fetch "+key)
	}
	return json.Marshal(doc)
}

// Put stores raw outline JSON under key, replacing any previous version.
func (m *Mongo) Put(ctx context.Context, key string, data []byte) error {
	if err := errors.ValidateDocName(key); err != nil {
		return err
	}
	var doc mongoDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode outline")
	}
	doc.ID = idFilter(key)
	doc.UpdatedAt = time.Now().UTC()

	_, err := m.coll().ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: doc.ID}}, doc,
		options.Replace().SetUpsert(true))
	return classify(err, "put "+key)
}

// Close disconnects the client if the source created it.
func (m *Mongo) Close(ctx context.Context) error {
	if !m.owned {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func idFilter(key string) any {
	if oid, err := primitive.ObjectIDFromHex(key); err == nil {
		return oid
	}
	return key
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// classify marks transient driver errors as retryable.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Unavailable("mongo", op, err)
	}
	return fmt.Errorf("mongo %s: %w", op, err)
}

var _ Source = (*Mongo)(nil)
