package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// New creates a Firestore client for the shared-cache backend from raw
// service account JSON.
func New(ctx context.Context, projectID string, credsJSON []byte) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	return client, nil
}

// Ping performs a lightweight check by attempting to iterate collections.
func Ping(ctx context.Context, client *firestore.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	iter := client.Collections(ctx)
	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil
	}
	return err
}
