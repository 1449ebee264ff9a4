package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/threetier/backend/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBHost: "prod-db.internal",
		DBPort: "3306",
		DBName: "myapp",
		DBUser: "admin",
		DBPass: "p@ss:word",
	}

	parsed, err := mysql.ParseDSN(DSN(cfg))
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}
	if parsed.Addr != "prod-db.internal:3306" {
		t.Errorf("Addr = %q", parsed.Addr)
	}
	if parsed.User != "admin" || parsed.Passwd != "p@ss:word" {
		t.Errorf("credentials = %q/%q", parsed.User, parsed.Passwd)
	}
	if parsed.DBName != "myapp" || !parsed.ParseTime {
		t.Errorf("unexpected config: %+v", parsed)
	}
}

func TestOpen_DoesNotDial(t *testing.T) {
	db, err := Open(config.Config{DBHost: "127.0.0.1", DBPort: "1", DBName: "x", DBUser: "u"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
}

type stubPinger struct{ err error }

func (s stubPinger) PingContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	return s.err
}

func TestPing(t *testing.T) {
	if err := Ping(context.Background(), stubPinger{}, time.Second); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	err := Ping(context.Background(), stubPinger{err: errors.New("connection refused")}, time.Second)
	if !errors.Is(err, ErrDatabaseUnavailable) {
		t.Fatalf("err = %v, want ErrDatabaseUnavailable", err)
	}
}
