package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"002_jobs.up.sql", "001_transform_events.up.sql",
		"001_transform_events.down.sql", "002_jobs.down.sql", "README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	up, err := migrationFiles(dir, "up")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "001_transform_events.up.sql"), filepath.Join(dir, "002_jobs.up.sql")}
	if !reflect.DeepEqual(up, want) {
		t.Errorf("up = %v, want %v", up, want)
	}

	down, err := migrationFiles(dir, "down")
	if err != nil {
		t.Fatal(err)
	}
	want = []string{filepath.Join(dir, "002_jobs.down.sql"), filepath.Join(dir, "001_transform_events.down.sql")}
	if !reflect.DeepEqual(down, want) {
		t.Errorf("down = %v, want %v", down, want)
	}
}

func TestMigrationFiles_RepoMigrationsArePaired(t *testing.T) {
	up, err := migrationFiles("../../migrations", "up")
	if err != nil {
		t.Fatal(err)
	}
	down, err := migrationFiles("../../migrations", "down")
	if err != nil {
		t.Fatal(err)
	}
	if len(up) == 0 || len(up) != len(down) {
		t.Errorf("expected paired migrations, got %d up and %d down", len(up), len(down))
	}
}
