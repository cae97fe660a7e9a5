package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestShutdownOperationsCloseStoresAfterServer(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, name)
	}

	app := &application{
		server: &http.Server{Addr: "127.0.0.1:0"},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		stores: map[string]func(){
			"postgres": func() { record("postgres") },
			"redis":    func() { record("redis") },
		},
	}
	ops := app.shutdownOperations()
	if len(ops) != 3 {
		t.Fatalf("got %d operations, want 3", len(ops))
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	for _, name := range []string{"postgres", "redis"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ops[name](ctx); err != nil {
				t.Errorf("%s operation error = %v", name, err)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	closedEarly := len(order)
	mu.Unlock()
	if closedEarly != 0 {
		t.Fatalf("stores closed before the server drained: %v", order)
	}

	record("http-server")
	if err := ops["http-server"](ctx); err != nil {
		t.Fatalf("http-server operation error = %v", err)
	}
	wg.Wait()

	if len(order) != 3 || order[0] != "http-server" {
		t.Errorf("shutdown order = %v, want http-server first", order)
	}
}

func TestShutdownOperationsGiveUpOnTimeout(t *testing.T) {
	closed := false
	app := &application{
		server: &http.Server{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		stores: map[string]func(){"redis": func() { closed = true }},
	}
	ops := app.shutdownOperations()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := ops["redis"](ctx); err == nil {
		t.Error("redis operation succeeded without the server draining")
	}
	if closed {
		t.Error("redis closed before the server drained")
	}
}
