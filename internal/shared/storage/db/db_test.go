package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func withMockOpen(t *testing.T, pingErr error) sqlmock.Sqlmock {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	mock.ExpectPing().WillReturnError(pingErr)

	prev := openDB
	openDB = func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" {
			t.Fatalf("expected pgx driver, got %q", driverName)
		}
		return mockDB, nil
	}
	t.Cleanup(func() {
		openDB = prev
		mockDB.Close()
	})
	return mock
}

func TestOptionsFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions())
	want := Options{
		MaxOpenConns:    7,
		MaxIdleConns:    3,
		ConnMaxLifetime: 20 * time.Minute,
		ConnMaxIdleTime: 45 * time.Second,
		PingTimeout:     time.Second,
	}
	if opts != want {
		t.Fatalf("expected %+v, got %+v", want, opts)
	}
}

func TestOptionsFromIgnoresInvalidValues(t *testing.T) {
	env := map[string]string{
		"DB_MAX_OPEN_CONNS":    "many",
		"DB_CONN_MAX_LIFETIME": "forever",
		"DB_MAX_IDLE_CONNS":    " ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	opts := optionsFrom(DefaultMigrateOptions(), lookup)
	if opts != DefaultMigrateOptions() {
		t.Fatalf("expected defaults to survive invalid env, got %+v", opts)
	}
}

func TestConnectAppliesPool(t *testing.T) {
	mock := withMockOpen(t, nil)

	db, err := Connect(context.Background(), "postgres://x", Options{MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := db.Stats().MaxOpenConnections; got != 4 {
		t.Fatalf("expected MaxOpenConnections=4, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConnectFailsOnPing(t *testing.T) {
	withMockOpen(t, driver.ErrBadConn)

	_, err := Connect(context.Background(), "postgres://x", DefaultMigrateOptions())
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); !errors.Is(err, ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}
}

func TestConnectPropagatesOpenError(t *testing.T) {
	prev := openDB
	openDB = func(string, string) (*sql.DB, error) { return nil, driver.ErrBadConn }
	defer func() { openDB = prev }()

	if _, err := Connect(context.Background(), "postgres://x", DefaultMigrateOptions()); !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestHealthy(t *testing.T) {
	if err := Healthy(context.Background(), nil); err != nil {
		t.Fatalf("expected nil database to be healthy, got %v", err)
	}

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()
	mock.ExpectPing().WillReturnError(driver.ErrBadConn)

	if err := Healthy(context.Background(), mockDB); !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected ping failure, got %v", err)
	}
}
