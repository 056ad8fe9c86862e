package infra

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

func TestExtractMarker(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantMarker string
		wantSQL    string
		wantErr    bool
	}{
		{
			name:       "valid marker",
			query:      "--sql 8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7\nselect 1;\n",
			wantMarker: "8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7",
			wantSQL:    "select 1;",
		},
		{
			name:       "leading whitespace",
			query:      "\n  --sql 8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7\nselect 1\nfrom t;",
			wantMarker: "8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7",
			wantSQL:    "select 1\nfrom t;",
		},
		{name: "missing marker", query: "select 1;", wantErr: true},
		{name: "uppercase uuid", query: "--sql 8A8E0D52-7F5D-4F21-8B7D-F7D4B821EED7\nselect 1;", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			marker, sql, err := extractMarker(tc.query)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("extractMarker() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("extractMarker() unexpected error: %v", err)
			}
			if marker != tc.wantMarker || sql != tc.wantSQL {
				t.Fatalf("extractMarker() = %q, %q; want %q, %q", marker, sql, tc.wantMarker, tc.wantSQL)
			}
		})
	}
}

type recordingQuerier struct {
	lastSQL string
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.lastSQL = sql
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	q.lastSQL = sql
	return errorRow{err: pgx.ErrNoRows}
}

func (q *recordingQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	return nil, fmt.Errorf("not implemented")
}

func TestSQLRunnerStripsMarker(t *testing.T) {
	rec := &recordingQuerier{}
	runner := &SQLRunner{Logger: zerolog.Nop(), q: rec}

	tag, err := runner.Exec(context.Background(), "--sql 6d4f5660-0f7c-4f73-a1f3-9ab6d5e6c7a3\nupdate t set a = 1;")
	if err != nil {
		t.Fatalf("Exec() error: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("RowsAffected() = %d, want 1", tag.RowsAffected())
	}
	if rec.lastSQL != "update t set a = 1;" {
		t.Fatalf("forwarded sql = %q", rec.lastSQL)
	}

	if _, err := runner.Exec(context.Background(), "update t set a = 1;"); err == nil {
		t.Fatal("Exec() without marker should fail")
	}
	if rec.lastSQL != "update t set a = 1;" {
		t.Fatalf("unmarked query must not reach the database")
	}

	err = runner.QueryRow(context.Background(), "--sql 6d4f5660-0f7c-4f73-a1f3-9ab6d5e6c7a3\nselect 1;").Scan()
	if !IsNoRows(err) {
		t.Fatalf("QueryRow().Scan() error = %v, want no rows", err)
	}
}

func TestInTxWithoutPool(t *testing.T) {
	runner := &SQLRunner{Logger: zerolog.Nop()}
	err := runner.InTx(context.Background(), func(SQLExecutor) error { return nil })
	if err == nil {
		t.Fatal("InTx() without pool should fail")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatal("expected unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatal("plain error is not a unique violation")
	}
}

func TestInTxNestedReusesTransaction(t *testing.T) {
	txRunner := &SQLRunner{Logger: zerolog.Nop(), q: &recordingQuerier{}, inTx: true}
	var got SQLExecutor
	if err := txRunner.InTx(context.Background(), func(exec SQLExecutor) error {
		got = exec
		return nil
	}); err != nil {
		t.Fatalf("nested InTx() error: %v", err)
	}
	if got != SQLExecutor(txRunner) {
		t.Fatal("nested InTx() should hand back the open transaction runner")
	}
}
