package mongodb

import (
	"context"
	"os"
	"testing"

	"habitd/internal/storage"
	"habitd/internal/storage/storetest"
)

func TestStoreContract(t *testing.T) {
	uri := os.Getenv("HABITD_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("HABITD_TEST_MONGO_URI not set")
	}

	storetest.Run(t, func(t *testing.T) storage.Store {
		store, err := Open(context.Background(), uri, "habitd_test", nil)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestOpenValidatesArguments(t *testing.T) {
	if _, err := Open(context.Background(), "", "db", nil); err == nil {
		t.Fatal("expected error for empty uri")
	}
	if _, err := Open(context.Background(), "mongodb://localhost:27017", "", nil); err == nil {
		t.Fatal("expected error for empty database")
	}
}
