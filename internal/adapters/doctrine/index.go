// Package doctrine implements the doctrine search port as an in-memory
// TF-IDF cosine index over chunked policy documents. Reindexing builds a new
// snapshot and swaps it atomically, so in-flight queries always see a
// complete index (old or new, never torn).
package doctrine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/21phuctran/i4NS-LENS/internal/domain"
)

type chunkRef struct {
	text   string
	source string
}

type snapshot struct {
	chunks  []chunkRef
	vectors []map[string]float64
	idf     map[string]float64
}

// Index loads .txt and .md doctrine documents from a directory.
type Index struct {
	dir          string
	chunkSize    int
	chunkOverlap int
	log          *zap.Logger

	snap atomic.Pointer[snapshot]
}

func New(dir string, chunkSize, chunkOverlap int, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{dir: dir, chunkSize: chunkSize, chunkOverlap: chunkOverlap, log: log}
}

// Reindex rebuilds the snapshot from the documents on disk and swaps it in.
// Returns the number of chunks indexed.
func (ix *Index) Reindex(ctx context.Context) (int, error) {
	var files []string
	err := filepath.WalkDir(ix.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan doctrine dir %s: %w", ix.dir, err)
	}
	sort.Strings(files)

	var chunks []chunkRef
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read doctrine %s: %w", path, err)
		}
		name := filepath.Base(path)
		for i, text := range SplitText(string(data), ix.chunkSize, ix.chunkOverlap) {
			chunks = append(chunks, chunkRef{text: text, source: fmt.Sprintf("%s#%d", name, i)})
		}
		ix.log.Debug("indexed doctrine document", zap.String("file", name))
	}

	tokens := make([][]string, len(chunks))
	for i, c := range chunks {
		tokens[i] = tokenize(c.text)
	}
	vectors, idf := buildVectors(tokens)

	ix.snap.Store(&snapshot{chunks: chunks, vectors: vectors, idf: idf})
	ix.log.Info("doctrine index rebuilt",
		zap.Int("documents", len(files)), zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Search returns the top-k passages by cosine similarity, best first.
// Deterministic for a fixed snapshot; ties keep chunk order.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]domain.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := ix.snap.Load()
	if snap == nil {
		return nil, fmt.Errorf("doctrine index not built")
	}
	if k <= 0 || len(snap.chunks) == 0 {
		return nil, nil
	}

	qv := queryVector(query, snap.idf)
	scored := make([]domain.Passage, 0, len(snap.chunks))
	for i, vec := range snap.vectors {
		score := cosine(qv, vec)
		if score <= 0 {
			continue
		}
		scored = append(scored, domain.Passage{
			Text:   snap.chunks[i].text,
			Source: snap.chunks[i].source,
			Score:  score,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// EnsureSampleDoctrine writes the bundled sample doctrine into dir when no
// doctrine documents exist yet, so a fresh deployment can demo end to end.
func EnsureSampleDoctrine(dir string) (created bool, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".md":
			return false, nil
		}
	}
	path := filepath.Join(dir, "sample_naval_doctrine.txt")
	if err := os.WriteFile(path, []byte(sampleDoctrine), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
