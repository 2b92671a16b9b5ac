package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed catalog",
	Long: `Keyword search over titles, authors, descriptions and categories in
the Elasticsearch catalog index. Use it to find the exact title to pass to
'bookrec recommend'.

Examples:
  # Basic search
  bookrec search "circus magic"

  # Limit results
  bookrec search "jane austen" --limit 5

  # JSON output for scripting
  bookrec search "dune" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := args[0]
	cfg := GetConfig()

	esClient, err := newESClient(cfg.Elasticsearch)
	if err != nil {
		return err
	}

	books, err := esClient.Search(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(books) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if searchFormat == "json" {
		output, err := json.MarshalIndent(books, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(books))
	for i, book := range books {
		fmt.Printf("─── Result %d ───\n", i+1)
		fmt.Printf("Title:      %s\n", book.Title)
		fmt.Printf("Author:     %s\n", book.Author)
		fmt.Printf("ID:         %d\n", book.ID)
		if book.Categories != "" {
			fmt.Printf("Categories: %s\n", book.Categories)
		}

		desc := []rune(book.Description)
		if len(desc) > 300 {
			desc = append(desc[:300], []rune("...")...)
		}
		fmt.Printf("%s\n\n", string(desc))
	}

	return nil
}
