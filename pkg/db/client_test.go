package db

import (
	"context"
	"path/filepath"
	"testing"
)

type testModel struct {
	ID   int
	Name string
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), MemoryDSN, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return client
}

func TestDBRoundTrip(t *testing.T) {
	client := newTestClient(t)

	if err := client.DB().Create(&testModel{Name: "stored"}).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var got testModel
	if err := client.DB().Where("name = ?", "stored").Take(&got).Error; err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.ID == 0 {
		t.Fatalf("expected generated id, got %+v", got)
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	client, err := New(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(context.Background(), "", nil); err == nil {
		t.Fatal("expected empty path to fail")
	}
}
