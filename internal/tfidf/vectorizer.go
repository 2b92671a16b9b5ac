package tfidf

import (
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/mfenderov/bookrec/internal/text"
)

// ErrEmptyCorpus is returned when there are no documents to vectorize.
var ErrEmptyCorpus = errors.New("empty corpus")

// Vocabulary maps terms to matrix columns. It is frozen once FitTransform returns.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Index returns the column of a term.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Vectorizer turns documents into L2-normalized TF-IDF vectors.
type Vectorizer struct {
	// StopWords are dropped during tokenization. Nil disables filtering.
	StopWords map[string]struct{}
	// MinDocFrequency prunes terms that occur in fewer documents. Values below 1 mean 1.
	MinDocFrequency int
}

// NewVectorizer returns a Vectorizer using the English stop-word list and no pruning.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		StopWords:       text.EnglishStopWords(),
		MinDocFrequency: 1,
	}
}

// FitTransform builds the vocabulary from docs and returns one vector per document,
// in input order.
//
// Weights are raw term count times smoothed IDF, ln((1+n)/(1+df)) + 1, and each
// vector is scaled to unit length. Documents with no surviving terms get an empty
// vector. Columns are assigned in sorted term order, so the result only depends on
// docs and the Vectorizer's settings.
func (v *Vectorizer) FitTransform(docs []string) (*Vocabulary, []Vector, error) {
	if len(docs) == 0 {
		return nil, nil, ErrEmptyCorpus
	}

	tokenizer := text.NewTokenizer(v.StopWords)

	counts := make([]map[string]int, len(docs))
	docFreq := make(map[string]int)
	for i, doc := range docs {
		counts[i] = text.TermCounts(tokenizer.Tokenize(doc))
		for term := range counts[i] {
			docFreq[term]++
		}
	}

	minDF := v.MinDocFrequency
	if minDF < 1 {
		minDF = 1
	}

	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df >= minDF {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	vocab := &Vocabulary{
		terms: terms,
		index: make(map[string]int, len(terms)),
	}
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		vocab.index[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([]Vector, len(docs))
	empty := 0
	for i, tc := range counts {
		weights := make(map[int]float64, len(tc))
		for term, c := range tc {
			col, ok := vocab.index[term]
			if !ok {
				continue
			}
			weights[col] = float64(c) * idf[col]
		}
		vec := newVector(weights)
		vec.normalize()
		if len(vec) == 0 {
			empty++
		}
		vectors[i] = vec
	}

	slog.Debug("tf-idf fit complete",
		"documents", len(docs),
		"vocabulary", len(terms),
		"empty_documents", empty)

	return vocab, vectors, nil
}
