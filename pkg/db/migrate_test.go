package db

import (
	"testing"
	"testing/fstest"
)

func TestReadMigrationsSortsByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := ReadMigrations(fsys)
	if err != nil {
		t.Fatalf("ReadMigrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("got %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "first" {
		t.Errorf("first migration = %+v", migrations[0])
	}
	if migrations[1].SQL != "SELECT 2;" {
		t.Errorf("second migration SQL = %q", migrations[1].SQL)
	}
}

func TestReadMigrationsRejectsBadNames(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"no underscore": {"001.sql": {Data: []byte("x")}},
		"not a number":  {"abc_init.sql": {Data: []byte("x")}},
		"zero version":  {"000_init.sql": {Data: []byte("x")}},
		"duplicate": {
			"001_a.sql": {Data: []byte("x")},
			"001_b.sql": {Data: []byte("y")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadMigrations(fsys); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOperationOf(t *testing.T) {
	cases := map[string]string{
		"  SELECT * FROM days":        "select",
		"INSERT INTO habits":          "insert",
		"WITH x AS (SELECT 1) SELECT": "select",
		"":                            "unknown",
	}
	for sql, want := range cases {
		if got := operationOf(sql); got != want {
			t.Errorf("operationOf(%q) = %q, want %q", sql, got, want)
		}
	}
}
