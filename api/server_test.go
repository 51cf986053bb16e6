package api

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/shopdash/api/routes"
	"github.com/angelmondragon/shopdash/pkg/config"
	"github.com/angelmondragon/shopdash/pkg/logger"
)

func TestServerStopsWhenContextEnds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Env = "test"
	srv := NewServer(ln.Addr().String(), routes.Params{Config: cfg, Logger: logger.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
