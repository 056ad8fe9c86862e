package repo

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/weforyou/ledger/internal/infra"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		sv := reflect.ValueOf(r.values[i])
		if dv.Kind() == reflect.Pointer && sv.Type() != dv.Type() {
			p := reflect.New(dv.Type().Elem())
			p.Elem().Set(sv.Convert(dv.Type().Elem()))
			dv.Set(p)
			continue
		}
		dv.Set(sv.Convert(dv.Type()))
	}
	return nil
}

type call struct {
	query string
	args  []any
}

// fakeDB scripts results per query constant and records every call.
type fakeDB struct {
	calls []call
	rows  map[string]fakeRow
	tags  map[string]pgconn.CommandTag
	txs   int
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: map[string]fakeRow{}, tags: map[string]pgconn.CommandTag{}}
}

func (f *fakeDB) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	if tag, ok := f.tags[query]; ok {
		return tag, nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeDB) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{query: query, args: args})
	if row, ok := f.rows[query]; ok {
		return row
	}
	return fakeRow{err: pgx.ErrNoRows}
}

func (f *fakeDB) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, call{query: query, args: args})
	return nil, errors.New("fakeDB: Query is not scripted")
}

func (f *fakeDB) InTx(_ context.Context, fn func(infra.SQLExecutor) error) error {
	f.txs++
	return fn(f)
}

func (f *fakeDB) called(query string) bool {
	for _, c := range f.calls {
		if c.query == query {
			return true
		}
	}
	return false
}

func (f *fakeDB) argsOf(query string) []any {
	for _, c := range f.calls {
		if c.query == query {
			return c.args
		}
	}
	return nil
}

var _ infra.DB = (*fakeDB)(nil)
