package recommend

import (
	"errors"

	"github.com/mfenderov/bookrec/internal/similarity"
	"github.com/mfenderov/bookrec/internal/tfidf"
	"github.com/mfenderov/bookrec/internal/titleindex"
)

var (
	// ErrEmptyCorpus means there were no books to vectorize.
	ErrEmptyCorpus = tfidf.ErrEmptyCorpus
	// ErrInvalidArgument reports a bad query, such as k <= 0.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound means the title is not in the catalog. It is a normal
	// negative result, distinct from an empty recommendation list.
	ErrNotFound = titleindex.ErrNotFound
	// ErrCorpusState reports an inconsistent corpus, e.g. a matrix that does
	// not match the book count.
	ErrCorpusState = similarity.ErrCorpusState
)
