package cmd

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/mfenderov/bookrec/internal/config"
	"github.com/mfenderov/bookrec/internal/elasticsearch"
	"github.com/mfenderov/bookrec/internal/pipeline"
	"github.com/mfenderov/bookrec/internal/recommend"
	"github.com/mfenderov/bookrec/internal/storage"
	"github.com/mfenderov/bookrec/internal/text"
)

func newStorageClient(cfg config.Storage) (*storage.Client, error) {
	client, err := storage.New(storage.Config{
		Endpoint:        cfg.Endpoint,
		Bucket:          cfg.Bucket,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		UseSSL:          cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

func newESClient(cfg config.Elasticsearch) (*elasticsearch.Client, error) {
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Index:     cfg.Index,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	return client, nil
}

// buildOptions turns vectorizer and recommender config into build options.
// Configured stop words extend the English list.
func buildOptions(cfg config.Config) recommend.Options {
	opts := recommend.Options{
		MinDocFrequency: cfg.Vectorizer.MinDocFrequency,
		Workers:         cfg.Recommender.Workers,
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if extra := cfg.Vectorizer.StopWordSet(); extra != nil {
		words := text.EnglishStopWords()
		for w := range extra {
			words[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
		}
		opts.StopWords = words
	}
	return opts
}

// loadCorpus reads the corpus from local files, or from object storage when
// snapshot is set ("latest" picks the newest one).
func loadCorpus(ctx context.Context, cfg config.Config, snapshot string) (*recommend.Corpus, error) {
	if snapshot == "" {
		corpus, err := pipeline.LoadLocal(cfg.Catalog.CleanedPath, cfg.Catalog.MatrixPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load corpus (run 'bookrec build' first): %w", err)
		}
		return corpus, nil
	}

	store, err := newStorageClient(cfg.Storage)
	if err != nil {
		return nil, err
	}
	if snapshot == "latest" {
		snapshot = ""
	}
	corpus, err := pipeline.LoadSnapshot(ctx, store, snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return corpus, nil
}
