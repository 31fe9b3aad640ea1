package storagetest_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/JaimeStill/folio/pkg/storage"
	"github.com/JaimeStill/folio/pkg/storage/storagetest"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := storagetest.NewMemory()

	if err := m.Put(ctx, "b", "pages/D/0.png", []byte("png"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}

	ok, err := m.Exists(ctx, "b", "pages/D/0.png")
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v; want true, nil", ok, err)
	}

	obj, _ := m.Object("b", "pages/D/0.png")
	if obj.ContentType != "image/png" {
		t.Errorf("content type: got %s, want image/png", obj.ContentType)
	}

	if _, err := m.Get(ctx, "b", "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get missing: got %v, want ErrNotFound", err)
	}
}

func TestMemoryDeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := storagetest.NewMemory()
	m.Seed("b", "pages/D/0.pdf", nil, "application/pdf")
	m.Seed("b", "pages/D/1.pdf", nil, "application/pdf")
	m.Seed("b", "pages/E/0.pdf", nil, "application/pdf")

	n, err := m.DeletePrefix(ctx, "b", "pages/D/")
	if err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted: got %d, want 2", n)
	}
	if got := m.Keys("b"); !slices.Equal(got, []string{"pages/E/0.pdf"}) {
		t.Errorf("remaining keys: got %v", got)
	}
}

func TestMemorySignedURL(t *testing.T) {
	m := storagetest.NewMemory()

	u, err := m.SignedURL(context.Background(), "b", "documents/D.pdf", time.Hour)
	if err != nil {
		t.Fatalf("signed url: %v", err)
	}
	if want := "https://blob.test/b/documents/D.pdf?ttl=1h0m0s"; u != want {
		t.Errorf("signed url: got %s, want %s", u, want)
	}
}
