package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubExecutor struct {
	token string
	err   error
	exec  struct {
		query string
		args  []any
	}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.exec.query = query
	s.exec.args = args
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return stubRow{token: s.token, err: s.err}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	token string
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	ptr, ok := dest[0].(*string)
	if !ok {
		return errors.New("invalid dest")
	}
	*ptr = r.token
	return nil
}

func TestSileroAPIKeyTrimsToken(t *testing.T) {
	store := NewStore(&stubExecutor{token: " abc123 "})
	key, err := store.SileroAPIKey(context.Background())
	if err != nil {
		t.Fatalf("SileroAPIKey error: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("key = %q, want %q", key, "abc123")
	}
}

func TestSileroAPIKeyNoRowsIsEmpty(t *testing.T) {
	store := NewStore(&stubExecutor{err: pgx.ErrNoRows})
	key, err := store.SileroAPIKey(context.Background())
	if err != nil {
		t.Fatalf("SileroAPIKey error: %v", err)
	}
	if key != "" {
		t.Fatalf("key = %q, want empty", key)
	}
}

func TestSetTokenValidation(t *testing.T) {
	store := NewStore(&stubExecutor{})
	if err := store.SetToken(context.Background(), "", "abc"); err == nil {
		t.Fatal("expected error for missing provider")
	}
	if err := store.SetToken(context.Background(), ProviderSilero, "  "); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestSetTokenPersists(t *testing.T) {
	stub := &stubExecutor{}
	store := NewStore(stub)
	if err := store.SetSileroAPIKey(context.Background(), " key-1 "); err != nil {
		t.Fatalf("SetSileroAPIKey error: %v", err)
	}
	if len(stub.exec.args) != 2 {
		t.Fatalf("args = %v", stub.exec.args)
	}
	if stub.exec.args[0] != ProviderSilero || stub.exec.args[1] != "key-1" {
		t.Fatalf("unexpected args: %v", stub.exec.args)
	}
}
