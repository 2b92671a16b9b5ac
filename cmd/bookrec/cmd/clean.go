package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfenderov/bookrec/internal/catalog"
)

var (
	cleanInput  string
	cleanOutput string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Deduplicate and normalize the catalog",
	Long: `Clean a collected catalog: drop exact duplicates and rows missing a
title, author or description, trim text columns, zero missing page counts
and ratings, and flatten category lists.

Example:
  bookrec clean --input data/books_dataset_updated.csv`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVar(&cleanInput, "input", "", "catalog CSV to clean (default catalog.raw_path)")
	cleanCmd.Flags().StringVar(&cleanOutput, "output", "", "cleaned catalog CSV (default catalog.cleaned_path)")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	input := cleanInput
	if input == "" {
		input = cfg.Catalog.RawPath
	}
	output := cleanOutput
	if output == "" {
		output = cfg.Catalog.CleanedPath
	}

	books, err := catalog.LoadFile(input)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	cleaned, report := catalog.Clean(books)

	if err := catalog.SaveFile(output, cleaned); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	fmt.Printf("Input: %d, Duplicates dropped: %d, Missing required fields: %d, Output: %d\n",
		report.Input, report.Duplicates, report.MissingRequired, report.Output)
	fmt.Printf("Saved to %s\n", output)
	return nil
}
