package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunReturnsSetupErrorsWithoutOpeningWindow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lifepp.db")
	err := run(context.Background(), []string{"-store", "memory", "-db-path", dbPath, "-kernel", "4"})
	if err == nil {
		t.Fatal("expected even kernel size to be rejected")
	}
	if !strings.Contains(err.Error(), "kernel size must be odd") {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := run(context.Background(), []string{"-store", "memory", "-seed-mode", "plasma"}); err == nil {
		t.Fatal("expected unknown seed mode to be rejected")
	}
	if err := run(context.Background(), []string{"-no-such-flag"}); err == nil {
		t.Fatal("expected flag parse error")
	}
}
