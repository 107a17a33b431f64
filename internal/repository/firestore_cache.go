package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/artxeweb/comparaelprecio-api/internal/platform/cache"
	"github.com/artxeweb/comparaelprecio-api/pkg/util"
)

const cacheCollection = "cache"

// FirestoreCache persists worker responses in the `cache` collection so
// multiple instances share one cache.
type FirestoreCache struct {
	client *firestore.Client
}

func NewFirestoreCache(client *firestore.Client) *FirestoreCache {
	return &FirestoreCache{client: client}
}

type cacheDoc struct {
	Op        string    `firestore:"op"`
	Key       string    `firestore:"key"`
	Payload   []byte    `firestore:"payload"`
	FetchedAt time.Time `firestore:"fetchedAt"`
}

func (r *FirestoreCache) Get(ctx context.Context, op, key string) ([]byte, time.Time, error) {
	doc, err := r.client.Collection(cacheCollection).Doc(util.HashCacheKey(op, key)).Get(ctx)
	if err != nil {
		// Missing docs and read failures both degrade to a refetch.
		return nil, time.Time{}, cache.ErrMiss
	}
	var entry cacheDoc
	if err := doc.DataTo(&entry); err != nil {
		return nil, time.Time{}, cache.ErrMiss
	}
	return entry.Payload, entry.FetchedAt, nil
}

func (r *FirestoreCache) Set(ctx context.Context, op, key string, payload []byte, fetchedAt time.Time) error {
	_, err := r.client.Collection(cacheCollection).Doc(util.HashCacheKey(op, key)).Set(ctx, cacheDoc{
		Op:        op,
		Key:       key,
		Payload:   payload,
		FetchedAt: fetchedAt,
	})
	return err
}
