// Package encoder implements the deterministic TF-IDF sparse encoder
// backing the sparse modality of hybrid retrieval. The vocabulary is
// fitted once on the indexed corpus at startup and then shared read-only
// by all queries; corpus and query text must go through the same
// vocabulary or sparse scores are meaningless.
package encoder

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/tripseek/tripseek/schema"
)

// ErrNotFitted is returned when Encode is called before Fit.
var ErrNotFitted = errors.New("tfidf encoder must be fitted before encoding")

// DefaultMaxVocabSize bounds output dimensionality; backends cap sparse
// dimensions well above this.
const DefaultMaxVocabSize = 100000

var tokenPattern = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9]*\b`)

// TFIDF encodes text into sparse term-weight vectors over a bounded
// vocabulary. Fit builds the vocabulary; afterwards the encoder is
// read-only and safe for concurrent Encode calls.
type TFIDF struct {
	maxVocabSize int
	vocab        map[string]int
	idf          map[string]float64
	docCount     int
	fitted       bool
}

// NewTFIDF creates an unfitted encoder. A non-positive cap selects
// DefaultMaxVocabSize.
func NewTFIDF(maxVocabSize int) *TFIDF {
	if maxVocabSize <= 0 {
		maxVocabSize = DefaultMaxVocabSize
	}
	return &TFIDF{
		maxVocabSize: maxVocabSize,
		vocab:        make(map[string]int),
		idf:          make(map[string]float64),
	}
}

// Tokenize lower-cases text and extracts alphanumeric tokens that start
// with a letter, are at least two characters long and are not stopwords.
func (e *TFIDF) Tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Fit builds the vocabulary from document frequencies: the cap-many most
// document-frequent terms get dense indices in descending-frequency
// order (ties broken alphabetically for reproducibility), each with
// idf = ln(docCount/df) + 1.
func (e *TFIDF) Fit(documents []string) *TFIDF {
	e.docCount = len(documents)
	docFreq := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]struct{})
		for _, term := range e.Tokenize(doc) {
			seen[term] = struct{}{}
		}
		for term := range seen {
			docFreq[term]++
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if docFreq[terms[i]] != docFreq[terms[j]] {
			return docFreq[terms[i]] > docFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > e.maxVocabSize {
		terms = terms[:e.maxVocabSize]
	}

	e.vocab = make(map[string]int, len(terms))
	e.idf = make(map[string]float64, len(terms))
	for idx, term := range terms {
		e.vocab[term] = idx
		e.idf[term] = math.Log(float64(e.docCount)/float64(docFreq[term])) + 1
	}
	e.fitted = true
	return e
}

// Encode maps text to a sparse vector: weight = (tf/maxTf) * idf per
// in-vocabulary term. Out-of-vocabulary terms are dropped silently; text
// with no usable tokens yields an empty vector.
func (e *TFIDF) Encode(text string) (schema.SparseVector, error) {
	if !e.fitted {
		return schema.SparseVector{}, ErrNotFitted
	}

	terms := e.Tokenize(text)
	if len(terms) == 0 {
		return schema.SparseVector{}, nil
	}

	termFreq := make(map[string]int, len(terms))
	maxTf := 0
	for _, term := range terms {
		termFreq[term]++
		if termFreq[term] > maxTf {
			maxTf = termFreq[term]
		}
	}

	weights := make(map[uint32]float32, len(termFreq))
	for term, tf := range termFreq {
		idx, ok := e.vocab[term]
		if !ok {
			continue
		}
		weights[uint32(idx)] = float32(float64(tf) / float64(maxTf) * e.idf[term])
	}

	vec := schema.SparseVector{
		Indices: make([]uint32, 0, len(weights)),
		Values:  make([]float32, 0, len(weights)),
	}
	for idx := range weights {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Slice(vec.Indices, func(i, j int) bool { return vec.Indices[i] < vec.Indices[j] })
	for _, idx := range vec.Indices {
		vec.Values = append(vec.Values, weights[idx])
	}
	return vec, nil
}

// Fitted reports whether Fit has run.
func (e *TFIDF) Fitted() bool { return e.fitted }

// VocabSize returns the fitted vocabulary size.
func (e *TFIDF) VocabSize() int { return len(e.vocab) }

// TermWeight pairs a vocabulary term with its IDF score.
type TermWeight struct {
	Term string
	IDF  float64
}

// TopTerms returns the n most document-frequent terms, useful for
// inspecting what the corpus vocabulary looks like.
func (e *TFIDF) TopTerms(n int) []TermWeight {
	type entry struct {
		term string
		idx  int
	}
	entries := make([]entry, 0, len(e.vocab))
	for term, idx := range e.vocab {
		entries = append(entries, entry{term, idx})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]TermWeight, 0, n)
	for _, en := range entries[:n] {
		out = append(out, TermWeight{Term: en.term, IDF: e.idf[en.term]})
	}
	return out
}
