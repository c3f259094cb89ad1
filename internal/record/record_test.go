package record

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ibeckermayer/reelscribe/internal/types"
)

func testRecord(id string) types.ExtractionRecord {
	return types.ExtractionRecord{
		ReelID:        id,
		OriginalURL:   "https://www.instagram.com/reel/" + id + "/",
		FinalURL:      "https://www.instagram.com/reel/" + id + "/",
		Timestamp:     "2026-08-31T12:00:00Z",
		Transcription: "some speech",
		Caption:       "some caption",
	}
}

func TestPersistWritesOneFilePerReel(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir, nil)

	p.Persist(testRecord("AAA"))
	p.Persist(testRecord("BBB"))

	for _, id := range []string{"AAA", "BBB"} {
		data, err := os.ReadFile(filepath.Join(dir, id+".json"))
		if err != nil {
			t.Fatalf("record %s not written: %v", id, err)
		}
		var rec types.ExtractionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			t.Fatalf("record %s not valid JSON: %v", id, err)
		}
		if rec.ReelID != id {
			t.Errorf("reel_id = %q, want %q", rec.ReelID, id)
		}
	}
}

func TestPersistIdempotentOverwrite(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir, nil)

	first := testRecord("AAA")
	first.Transcription = "old"
	p.Persist(first)

	second := testRecord("AAA")
	second.Transcription = "new"
	p.Persist(second)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d files, want 1 (overwrite, not duplicate)", len(entries))
	}

	data, _ := os.ReadFile(filepath.Join(dir, "AAA.json"))
	if !strings.Contains(string(data), "new") {
		t.Error("rerun did not overwrite the record")
	}
}

func TestPersistErrorFieldOmittedOnSuccess(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir, nil)
	p.Persist(testRecord("AAA"))

	data, _ := os.ReadFile(filepath.Join(dir, "AAA.json"))
	if strings.Contains(string(data), `"error"`) {
		t.Error("error field present on success record")
	}

	failed := testRecord("BBB")
	failed.Transcription = ""
	failed.Error = "download failed: 404"
	p.Persist(failed)

	data, _ = os.ReadFile(filepath.Join(dir, "BBB.json"))
	if !strings.Contains(string(data), `"error"`) {
		t.Error("error field missing on failure record")
	}
}

func TestPersistSwallowsIOErrors(t *testing.T) {
	// Point the persister at a path that cannot be a directory
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("file, not dir"), 0600); err != nil {
		t.Fatal(err)
	}

	p := NewPersister(filepath.Join(blocker, "out"), nil)
	// Must not panic or propagate
	p.Persist(testRecord("AAA"))
}

func TestHasViaFileFallback(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir, nil)

	if p.Has("AAA") {
		t.Error("Has before persist")
	}
	p.Persist(testRecord("AAA"))
	if !p.Has("AAA") {
		t.Error("Has after persist")
	}
}

func TestPruneRemovesOnlyRejectedRecords(t *testing.T) {
	dir := t.TempDir()
	p := NewPersister(dir, nil)

	inCaption := testRecord("AAA")
	inCaption.Caption = "street food in tokyo"
	inCaption.Transcription = "nothing topical here"
	p.Persist(inCaption)

	inTranscript := testRecord("BBB")
	inTranscript.Caption = ""
	inTranscript.Transcription = "riding the shinkansen"
	p.Persist(inTranscript)

	offTopic := testRecord("CCC")
	offTopic.Caption = "gym routine"
	offTopic.Transcription = "leg day again"
	p.Persist(offTopic)

	keep := func(rec types.ExtractionRecord) bool {
		for _, kw := range []string{"tokyo", "shinkansen"} {
			if strings.Contains(rec.Caption, kw) || strings.Contains(rec.Transcription, kw) {
				return true
			}
		}
		return false
	}

	// Dry run reports but does not delete
	kept, removed, err := Prune(dir, keep, true)
	if err != nil {
		t.Fatalf("Prune dry run: %v", err)
	}
	if len(kept) != 2 || len(removed) != 1 {
		t.Errorf("dry run kept %d removed %d, want 2/1", len(kept), len(removed))
	}
	if _, err := os.Stat(filepath.Join(dir, "CCC.json")); err != nil {
		t.Error("dry run deleted a file")
	}

	// Real run deletes the rejected record only
	_, removed, err = Prune(dir, keep, false)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 1 || filepath.Base(removed[0]) != "CCC.json" {
		t.Errorf("removed = %v, want [CCC.json]", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "CCC.json")); !os.IsNotExist(err) {
		t.Error("rejected record still on disk")
	}
	for _, id := range []string{"AAA", "BBB"} {
		if _, err := os.Stat(filepath.Join(dir, id+".json")); err != nil {
			t.Errorf("kept record %s missing: %v", id, err)
		}
	}
}

func TestPruneKeepsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "XXX.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	rejectAll := func(types.ExtractionRecord) bool { return false }
	kept, removed, err := Prune(dir, rejectAll, false)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 0 || len(kept) != 1 {
		t.Errorf("kept %d removed %d, want malformed file kept", len(kept), len(removed))
	}
	if _, err := os.Stat(bad); err != nil {
		t.Error("malformed file was deleted")
	}
}

func TestStoreIndex(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	rec := testRecord("AAA")
	if err := store.SaveRecord(&rec); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	ok, err := store.Has("AAA")
	if err != nil || !ok {
		t.Errorf("Has(AAA) = %v, %v; want true, nil", ok, err)
	}
	ok, err = store.Has("ZZZ")
	if err != nil || ok {
		t.Errorf("Has(ZZZ) = %v, %v; want false, nil", ok, err)
	}

	// Upsert does not duplicate
	rec.Error = "transcription failed: oom"
	if err := store.SaveRecord(&rec); err != nil {
		t.Fatalf("SaveRecord upsert: %v", err)
	}
	n, err := store.Count(false)
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1, nil", n, err)
	}
	n, err = store.Count(true)
	if err != nil || n != 1 {
		t.Errorf("Count(errors) = %d, %v; want 1, nil", n, err)
	}
}
