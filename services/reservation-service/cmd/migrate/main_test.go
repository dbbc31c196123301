package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/you/meeting-room-booking/services/reservation-service/migrations"
)

func TestParseSteps(t *testing.T) {
	tests := []struct {
		args    []string
		want    int
		wantErr bool
	}{
		{nil, 1, false},
		{[]string{"3"}, 3, false},
		{[]string{"0"}, 0, true},
		{[]string{"x"}, 0, true},
	}
	for _, tt := range tests {
		got, err := parseSteps(tt.args)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseSteps(%v) = %d, %v", tt.args, got, err)
		}
	}
}

func TestEmbeddedMigrationsAreSequential(t *testing.T) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatalf("iofs.New: %v", err)
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	seen := []uint{v}
	for {
		next, err := src.Next(v)
		if err != nil {
			break
		}
		seen = append(seen, next)
		v = next
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Fatalf("versions = %v, want [1 2 3]", seen)
	}
	for _, ver := range seen {
		if _, _, err := src.ReadDown(ver); err != nil {
			t.Errorf("version %d has no down migration: %v", ver, err)
		}
	}
}

func TestRootCommandRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_DSN", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"version"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "no database URL") {
		t.Fatalf("expected missing database error, got %v", err)
	}
}
