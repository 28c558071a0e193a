package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/httpsession/pkg/session"
)

type sessionDocument struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Store keeps one document per session. The payload is stored encoded so
// values read back exactly like from every other store.
type Store struct {
	coll  *mongo.Collection
	ttl   time.Duration
	now   func() time.Time
	codec session.Codec
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source used to compute and check expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithCodec replaces the JSON encoding of payloads.
func WithCodec(c session.Codec) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// NewStore creates a Store on coll. Call EnsureIndexes once at startup.
func NewStore(coll *mongo.Collection, ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		coll:  coll,
		ttl:   session.NormalizeTTL(ttl),
		now:   time.Now,
		codec: session.JSONCodec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureIndexes creates the TTL index letting the server drop expired
// documents on its own, roughly once a minute.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return errors.Join(ErrFailedToCreateIndexes, err)
	}
	return nil
}

func (s *Store) live(now time.Time) bson.M {
	return bson.M{"$gte": now}
}

// New returns an empty record.
func (s *Store) New() session.Data { return session.Data{} }

// TTL returns the session lifespan.
func (s *Store) TTL() time.Duration { return s.ttl }

// Get returns session.ErrNotFound for missing or expired documents.
func (s *Store) Get(ctx context.Context, id string) (session.Data, error) {
	var doc sessionDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "expires_at": s.live(s.now())}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.codec.Unmarshal(doc.Data)
}

// Set upserts the document with a fresh expiry.
func (s *Store) Set(ctx context.Context, id string, data session.Data) error {
	raw, err := s.codec.Marshal(data)
	if err != nil {
		return err
	}
	doc := sessionDocument{ID: id, Data: raw, ExpiresAt: s.now().Add(s.ttl)}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}

// Touch moves the expiry of a live document forward.
func (s *Store) Touch(ctx context.Context, id string) error {
	now := s.now()
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "expires_at": s.live(now)},
		bson.M{"$set": bson.M{"expires_at": now.Add(s.ttl)}},
	)
	return err
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Clear empties the payload and keeps the expiry.
func (s *Store) Clear(ctx context.Context, id string) error {
	raw, err := s.codec.Marshal(session.Data{})
	if err != nil {
		return err
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"data": raw}})
	return err
}

// IDs returns the ids of live documents, sorted.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"expires_at": s.live(s.now())},
		options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

// FlushExpired deletes expired documents. The TTL index does the same
// eventually; this makes the cut immediate.
func (s *Store) FlushExpired(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": s.now()}})
	return err
}
