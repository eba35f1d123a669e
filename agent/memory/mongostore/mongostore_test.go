package mongostore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestNewRequiresClient(t *testing.T) {
	_, err := New(context.Background(), Options{Database: "agents"})
	require.EqualError(t, err, "mongostore: client is required")
}

func TestNewRequiresDatabase(t *testing.T) {
	_, err := New(context.Background(), Options{Client: &mongo.Client{}})
	require.EqualError(t, err, "mongostore: database is required")
}
