package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
)

// ConnectFirestore uses application default credentials.
func ConnectFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("FIRESTORE_PROJECT_ID is not set")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}
