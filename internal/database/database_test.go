package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testDSN  string
	startErr error
)

func mustStartPostgresContainer(ctx context.Context) (func(), error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("todoapp_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("connection string: %w", err)
	}
	testDSN = dsn

	return func() {
		if err := container.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}, nil
}

func TestMain(m *testing.M) {
	ctx := context.Background()

	teardown, err := mustStartPostgresContainer(ctx)
	if err != nil {
		// No Docker available; let every test skip itself.
		startErr = err
	}

	code := m.Run()
	if teardown != nil {
		teardown()
	}
	os.Exit(code)
}

func requireContainer(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping containerized test in short mode")
	}
	if startErr != nil {
		t.Skipf("postgres container unavailable: %v", startErr)
	}
}

func TestNewAndHealth(t *testing.T) {
	requireContainer(t)

	srv, err := New(testDSN)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer srv.Close()

	stats := srv.Health()
	if stats["status"] != "up" {
		t.Fatalf("expected status up, got %q (%q)", stats["status"], stats["error"])
	}
	if stats["message"] != "It's healthy" {
		t.Errorf("unexpected health message: %q", stats["message"])
	}
	if _, ok := stats["open_connections"]; !ok {
		t.Error("expected pool statistics in health report")
	}
}

func TestMigrate(t *testing.T) {
	requireContainer(t)

	srv, err := New(testDSN)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	defer srv.Close()

	if err := Migrate(srv.GetDB()); err != nil {
		t.Fatalf("Migrate() returned error: %v", err)
	}

	for _, table := range []string{"users", "accounts", "sessions", "email_change_tokens", "todos"} {
		if !srv.GetDB().Migrator().HasTable(table) {
			t.Errorf("expected table %q after migration", table)
		}
	}
}

func TestClose(t *testing.T) {
	requireContainer(t)

	srv, err := New(testDSN)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}
}
