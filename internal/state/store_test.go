package state

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.Get("Каша")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("Expected no entry in a fresh store")
	}

	want := Entry{
		Term:       "Каша",
		Translated: "Porridge",
		Romanized:  "Kasha",
		AudioFile:  "RT_VOCAB0000.wav",
	}
	if err := store.Put(want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found, err := store.Get("Каша")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("Expected entry after Put")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestStore_PutReplaces(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put(Entry{Term: "Мир", Translated: "World"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(Entry{Term: "Мир", Translated: "World", Romanized: "Mir"}); err != nil {
		t.Fatal(err)
	}

	got, _, err := store.Get("Мир")
	if err != nil {
		t.Fatal(err)
	}
	if got.Romanized != "Mir" {
		t.Errorf("Entry not replaced: %+v", got)
	}
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(Entry{Term: "Земля", Translated: "Earth"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, found, err := reopened.Get("Земля")
	if err != nil || !found {
		t.Fatalf("Get after reopen: found=%v err=%v", found, err)
	}
	if got.Translated != "Earth" {
		t.Errorf("Got %+v", got)
	}
}
