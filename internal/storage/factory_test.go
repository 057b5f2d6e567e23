package storage

import "testing"

func TestNewStoreMemory(t *testing.T) {
	store, err := NewStore("memory", "")
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	if store == nil {
		t.Fatal("expected non-nil store")
	}
	if err := CloseIfSupported(store); err != nil {
		t.Fatalf("close memory store: %v", err)
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("unknown", "")
	if err == nil {
		t.Fatal("expected unsupported store error")
	}
}

func TestDefaultStoreKindMatchesBuild(t *testing.T) {
	kind := DefaultStoreKind()
	want := KindMemory
	if sqliteAvailable {
		want = KindSQLite
	}
	if kind != want {
		t.Fatalf("expected default store %s, got=%s", want, kind)
	}
}
