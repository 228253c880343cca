package doctrine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSearchBeforeReindex(t *testing.T) {
	ix := New(t.TempDir(), 1000, 200, nil)
	if _, err := ix.Search(context.Background(), "speed", 3); err == nil {
		t.Fatal("want error before first Reindex")
	}
}

func TestReindexAndSearch(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "speed.txt",
		"All speed changes must be logged with timestamp, previous speed, new speed, and tracking number.")
	writeDoc(t, dir, "overboard.txt",
		"Man overboard response: sound the alarm, reduce speed to five knots, mark the position.")
	writeDoc(t, dir, "ignored.pdf", "binary junk that must not be indexed")

	ix := New(dir, 1000, 200, nil)
	chunks, err := ix.Reindex(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if chunks != 2 {
		t.Fatalf("chunks = %d, want 2", chunks)
	}

	got, err := ix.Search(context.Background(), "speed change tracking number", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("no passages returned")
	}
	if !strings.Contains(got[0].Text, "speed changes must be logged") {
		t.Errorf("top passage = %q", got[0].Text)
	}
	if !strings.HasPrefix(got[0].Source, "speed.txt#") {
		t.Errorf("source = %q", got[0].Source)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("passages not sorted by score: %v then %v", got[i-1].Score, got[i].Score)
		}
	}
}

func TestSearchHonorsK(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		writeDoc(t, dir, name, "vessel speed doctrine "+name)
	}
	ix := New(dir, 1000, 0, nil)
	if _, err := ix.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, err := ix.Search(context.Background(), "vessel speed", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) > 2 {
		t.Errorf("got %d passages, want at most 2", len(got))
	}
}

func TestSearchNoOverlapReturnsNothing(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "doc.txt", "navigation watchkeeping procedures")
	ix := New(dir, 1000, 0, nil)
	if _, err := ix.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, err := ix.Search(context.Background(), "zzqqxx", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no passages for an unseen term", got)
	}
}

func TestReindexSwapsSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "one.txt", "original doctrine content about speed")
	ix := New(dir, 1000, 0, nil)
	if _, err := ix.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}

	writeDoc(t, dir, "two.txt", "freshly added doctrine about man overboard recovery")
	chunks, err := ix.Reindex(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if chunks != 2 {
		t.Fatalf("chunks after reindex = %d, want 2", chunks)
	}
	got, err := ix.Search(context.Background(), "man overboard recovery", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0].Source, "two.txt#") {
		t.Errorf("new document not searchable after reindex: %v", got)
	}
}

func TestSplitText(t *testing.T) {
	para := strings.Repeat("alpha bravo charlie delta. ", 10)
	text := para + "\n\n" + para + "\n\n" + para
	chunks := SplitText(text, 300, 50)
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want at least 2", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 300+50 {
			t.Errorf("chunk %d length %d exceeds window", i, len(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 1000, 200)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("chunks = %v", chunks)
	}
	if got := SplitText("", 1000, 200); len(got) != 0 {
		t.Errorf("empty input produced chunks: %v", got)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Speed changed to 15 knots! (TRK-001)")
	want := []string{"speed", "changed", "to", "15", "knots", "trk", "001"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCosineRanksRelevantChunkFirst(t *testing.T) {
	vectors, idf := buildVectors([][]string{
		tokenize("speed change logging requirements and tracking numbers"),
		tokenize("galley cleanliness and meal schedules"),
	})
	q := queryVector("speed change tracking", idf)
	if cosine(q, vectors[0]) <= cosine(q, vectors[1]) {
		t.Error("relevant chunk did not outscore the irrelevant one")
	}
}

func TestEnsureSampleDoctrine(t *testing.T) {
	dir := t.TempDir()
	created, err := EnsureSampleDoctrine(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("expected sample doctrine to be created in an empty dir")
	}
	created, err = EnsureSampleDoctrine(dir)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second call must not overwrite existing documents")
	}

	ix := New(dir, 1000, 200, nil)
	chunks, err := ix.Reindex(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if chunks == 0 {
		t.Error("sample doctrine produced no chunks")
	}
}
