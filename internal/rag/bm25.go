// Package rag provides keyword retrieval over portal content.
// The generative fallback grounds its answers on BM25 search results
// instead of answering from the model alone.
package rag

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	bm25 "github.com/iwilltry42/bm25-go/bm25"

	"github.com/tbu-portal/tbu-chatbot-go/internal/logger"
	"github.com/tbu-portal/tbu-chatbot-go/internal/textnorm"
)

// Document kinds.
const (
	KindFAQ      = "faq"
	KindSchedule = "schedule"
	KindNews     = "news"
)

// Document is one indexable snippet of portal content.
type Document struct {
	ID      string
	Kind    string
	Title   string
	Content string
}

// Result is a search hit with rank-based confidence.
// BM25 scores are unbounded and query-dependent, so rank position is
// used as the confidence proxy.
type Result struct {
	Document
	Score      float64
	Rank       int     // 1-indexed
	Confidence float32 // 0-1, higher = more relevant
}

// Index provides keyword-based search using the BM25 algorithm.
type Index struct {
	okapi       *bm25.BM25Okapi
	docs        []Document
	logger      *logger.Logger
	mu          sync.RWMutex
	initialized bool
}

// NewIndex creates an empty index.
func NewIndex(log *logger.Logger) *Index {
	return &Index{logger: log}
}

// Initialize builds the index from documents, replacing any previous
// contents. An empty document set leaves the index enabled but empty.
func (idx *Index) Initialize(docs []Document) error {
	if idx == nil {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	kept := make([]Document, 0, len(docs))
	corpus := make([]string, 0, len(docs))
	for _, d := range docs {
		text := strings.TrimSpace(d.Title + " " + d.Content)
		if text == "" {
			continue
		}
		kept = append(kept, d)
		corpus = append(corpus, text)
	}

	if len(corpus) == 0 {
		idx.docs = nil
		idx.okapi = nil
		idx.initialized = true
		return nil
	}

	// k1=1.5, b=0.75 are standard BM25 parameters
	okapi, err := bm25.NewBM25Okapi(corpus, tokenizeVietnamese, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("failed to create BM25 index: %w", err)
	}

	idx.docs = kept
	idx.okapi = okapi
	idx.initialized = true

	if idx.logger != nil {
		idx.logger.WithField("docs", len(kept)).Info("BM25 index initialized")
	}
	return nil
}

// Search returns the topN documents ranked by BM25 score descending.
func (idx *Index) Search(query string, topN int) ([]Result, error) {
	if idx == nil {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.initialized || idx.okapi == nil {
		return nil, nil
	}
	tokens := tokenizeVietnamese(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores, err := idx.okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	results := make([]Result, 0, len(scores))
	for docID, score := range scores {
		if score <= 0 || docID >= len(idx.docs) {
			continue
		}
		results = append(results, Result{Document: idx.docs[docID], Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	for i := range results {
		results[i].Rank = i + 1
		results[i].Confidence = rankConfidence(i + 1)
	}

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}

	return results, nil
}

// IsEnabled returns true once the index has been initialized.
func (idx *Index) IsEnabled() bool {
	if idx == nil {
		return false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.initialized
}

// Count returns the number of indexed documents.
func (idx *Index) Count() int {
	if idx == nil {
		return 0
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// rankConfidence converts a rank position into a confidence score.
//
// Formula: 1 / (1 + 0.05 * rank)
//   - rank 1 → 0.95
//   - rank 5 → 0.80
//   - rank 10 → 0.67
func rankConfidence(rank int) float32 {
	if rank <= 0 {
		return 0
	}
	return float32(1.0 / (1.0 + 0.05*float64(rank)))
}

// tokenizeVietnamese lowercases, strips diacritics and splits on
// non-alphanumeric runes, so "học phí" and "hoc phi" produce the
// same tokens.
func tokenizeVietnamese(text string) []string {
	folded := textnorm.Fold(strings.ToLower(text))

	var tokens []string
	var current strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
