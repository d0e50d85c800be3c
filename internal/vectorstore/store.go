// Package vectorstore persists chunk embeddings in a chromem-go database
// and answers nearest-neighbor queries over them. The on-disk layout is
// chromem's persistent format inside a vectorstore/ directory, which is
// also what uploaded archives must contain.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"

	"docchat/internal/models"
)

const collectionName = "documents"

// DirName is the directory inside an archive that holds the serialized
// index.
const DirName = "vectorstore"

// IndexLoadError reports a directory that does not contain a valid
// vector index.
type IndexLoadError struct {
	Dir string
	Err error
}

func (e *IndexLoadError) Error() string {
	return fmt.Sprintf("load vector index from %s: %v", e.Dir, e.Err)
}

func (e *IndexLoadError) Unwrap() error { return e.Err }

// Entry is one indexed chunk with its embedding. All entries of one
// store must share the embedding dimensionality and model; the store
// assumes this rather than verifying it.
type Entry struct {
	Embedding []float32
	Chunk     models.Chunk
}

// Result is a retrieved chunk with its similarity score.
type Result struct {
	Chunk models.Chunk
	Score float32
}

// Store is a read-only-after-build vector index. Concurrent queries are
// safe once Build or Load has returned.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// noEmbed guards against chromem ever reaching for a remote embedding
// API: all embeddings are computed by the caller.
func noEmbed(context.Context, string) ([]float32, error) {
	return nil, errors.New("store holds precomputed embeddings only")
}

// Build creates a persistent index at dir from a batch of entries.
// Entry IDs encode insertion order so ties can be broken by it.
func Build(ctx context.Context, dir string, entries []Entry) (*Store, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("create vector index at %s: %w", dir, err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	if len(entries) > 0 {
		docs := make([]chromem.Document, len(entries))
		for i, entry := range entries {
			docs[i] = chromem.Document{
				ID:        entryID(i),
				Content:   entry.Chunk.Text,
				Embedding: entry.Embedding,
				Metadata: map[string]string{
					"source":      entry.Chunk.Source,
					"page":        strconv.Itoa(entry.Chunk.Page),
					"total_pages": strconv.Itoa(entry.Chunk.TotalPages),
				},
			}
		}
		if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("add %d entries: %w", len(entries), err)
		}
	}
	return &Store{db: db, collection: collection}, nil
}

// Load opens an existing index directory. A directory that is missing or
// holds no index fails with IndexLoadError; Load never silently yields
// an empty index.
func Load(dir string) (*Store, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, &IndexLoadError{Dir: dir, Err: err}
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, &IndexLoadError{Dir: dir, Err: err}
	}
	collection := db.GetCollection(collectionName, noEmbed)
	if collection == nil {
		return nil, &IndexLoadError{Dir: dir, Err: fmt.Errorf("no %q collection found", collectionName)}
	}
	return &Store{db: db, collection: collection}, nil
}

// Count returns the number of indexed entries.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Query returns the k nearest entries to the given embedding, best
// first, ties broken by insertion order. k larger than the index returns
// every entry; a zero-entry index returns no results and no error.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	// chromem's own top-k selection does not order equal scores by ID, so
	// ask for every scored entry and take the top k after sorting.
	found, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       count,
	})
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Similarity != found[j].Similarity {
			return found[i].Similarity > found[j].Similarity
		}
		return found[i].ID < found[j].ID
	})
	if len(found) > k {
		found = found[:k]
	}

	results := make([]Result, 0, len(found))
	for _, r := range found {
		page, _ := strconv.Atoi(r.Metadata["page"])
		totalPages, _ := strconv.Atoi(r.Metadata["total_pages"])
		results = append(results, Result{
			Chunk: models.Chunk{
				Text:       r.Content,
				Source:     r.Metadata["source"],
				Page:       page,
				TotalPages: totalPages,
			},
			Score: r.Similarity,
		})
	}
	return results, nil
}

// entryID zero-pads the insertion index so lexicographic ID order equals
// insertion order.
func entryID(i int) string {
	return fmt.Sprintf("chunk-%08d", i)
}
