package ch

import (
	"context"
	"errors"
	"testing"
)

// TestOpen parses a DSN and returns a client without dialing
func TestOpen(t *testing.T) {
	t.Parallel()

	cl, err := Open(context.Background(), Config{URL: "clickhouse://localhost:9000/default"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if cl == nil {
		t.Fatalf("Open returned nil client")
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

// TestOpen_BadDSN bubbles the parse error
func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "://bad"}); err == nil {
		t.Fatalf("Open expected DSN parse error")
	}
}

// TestZeroValue_NotConnected covers the nil-conn guards
func TestZeroValue_NotConnected(t *testing.T) {
	t.Parallel()

	cl := &CH{}
	if err := cl.Insert(context.Background(), "t", [][]any{{1}}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Insert err = %v, want ErrNotConnected", err)
	}
	if _, err := cl.Query(context.Background(), "SELECT 1"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Query err = %v, want ErrNotConnected", err)
	}
	if err := cl.Ping(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Ping err = %v, want ErrNotConnected", err)
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close on zero value returned error: %v", err)
	}
}

// TestInsert_EmptyBatch short-circuits before the conn guard
func TestInsert_EmptyBatch(t *testing.T) {
	t.Parallel()

	cl := &CH{}
	if err := cl.Insert(context.Background(), "t", nil); err != nil {
		t.Fatalf("Insert empty batch returned error: %v", err)
	}
}
