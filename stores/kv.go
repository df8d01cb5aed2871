// Package stores keeps per-client cart, wishlist and browsing history documents.
package stores

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultTTL is how long an untouched client document is kept.
const DefaultTTL = 30 * 24 * time.Hour

var ErrNotFound = errors.New("key not found")

// KV is the persistence a store needs: opaque values under string keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryKV keeps values in process memory with expiry.
type MemoryKV struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewMemoryKV(ttl time.Duration) *MemoryKV {
	return &MemoryKV{c: cache.New(ttl, 10*time.Minute), ttl: ttl}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v.([]byte), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.c.Set(key, append([]byte(nil), value...), m.ttl)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// RedisKV stores values as redis strings with a sliding expiry.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// MongoKV stores one document per key in a collection.
type MongoKV struct {
	coll *mongo.Collection
}

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func NewMongoKV(coll *mongo.Collection) *MongoKV {
	return &MongoKV{coll: coll}
}

// EnsureTTL creates the expiry index on updatedAt.
func (m *MongoKV) EnsureTTL(ctx context.Context, ttl time.Duration) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updatedAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
	})
	return err
}

func (m *MongoKV) Get(ctx context.Context, key string) ([]byte, error) {
	var doc mongoDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Value), nil
}

func (m *MongoKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": string(value), "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (m *MongoKV) Delete(ctx context.Context, key string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func load(ctx context.Context, kv KV, key string, into any) error {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, into)
}

func save(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(ctx, key, raw)
}
