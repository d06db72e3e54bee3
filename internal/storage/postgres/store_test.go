package postgres

import (
	"context"
	"os"
	"testing"

	"habitd/internal/storage"
	"habitd/internal/storage/storetest"
)

func TestStoreContract(t *testing.T) {
	url := os.Getenv("HABITD_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("HABITD_TEST_POSTGRES_URL not set")
	}

	storetest.Run(t, func(t *testing.T) storage.Store {
		store, err := Open(context.Background(), url, nil)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	if _, err := Open(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty url")
	}
}
