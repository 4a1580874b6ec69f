package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
		kind string
	}{
		{name: "record_not_found", err: gorm.ErrRecordNotFound, want: ErrNotFound, kind: "not_found"},
		{name: "duplicated_key", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: ErrConflict, kind: "conflict"},
		{name: "pg_unique_violation", err: &pgconn.PgError{Code: "23505"}, want: ErrConflict, kind: "conflict"},
		{name: "pg_deadlock", err: &pgconn.PgError{Code: "40P01"}, want: ErrRetryable, kind: "retryable"},
		{name: "deadline", err: context.DeadlineExceeded, want: ErrRetryable, kind: "retryable"},
		{name: "sqlite_unique", err: errors.New("UNIQUE constraint failed: books.isbn13"), want: ErrConflict, kind: "conflict"},
		{name: "other", err: errors.New("boom"), want: ErrInternal, kind: "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			if !errors.Is(got, tc.want) {
				t.Fatalf("Classify(%v)=%v, want category %v", tc.err, got, tc.want)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("Classify(%v) lost the original error", tc.err)
			}
			if k := Kind(tc.err); k != tc.kind {
				t.Fatalf("Kind(%v)=%q, want %q", tc.err, k, tc.kind)
			}
		})
	}
	if Classify(nil) != nil {
		t.Fatalf("Classify(nil) should be nil")
	}
}
