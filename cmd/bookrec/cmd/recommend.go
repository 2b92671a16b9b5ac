package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mfenderov/bookrec/internal/metrics"
	"github.com/mfenderov/bookrec/internal/recommend"
	"github.com/mfenderov/bookrec/pkg/models"
)

var (
	recommendK        int
	recommendFormat   string
	recommendSnapshot string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [title]",
	Short: "Recommend books similar to a title",
	Long: `Recommend books similar to a title from the catalog. Titles match
case-insensitively. Without a title an interactive prompt starts; type
'exit' to quit.

Examples:
  # One-shot
  bookrec recommend "The Night Circus" -k 5

  # JSON output for scripting
  bookrec recommend "Dune" --format json

  # Interactive prompt against the newest published snapshot
  bookrec recommend --snapshot latest`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().IntVarP(&recommendK, "k", "k", 0, "number of recommendations (default recommender.default_k)")
	recommendCmd.Flags().StringVar(&recommendFormat, "format", "text", "Output format: text or json")
	recommendCmd.Flags().StringVar(&recommendSnapshot, "snapshot", "", "load a published snapshot prefix, or 'latest', instead of local files")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	k := resolveK(cmd.Flags().Changed("k"), recommendK, cfg.Recommender.DefaultK)

	corpus, err := loadCorpus(ctx, cfg, recommendSnapshot)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		return recommendOnce(out, corpus, args[0], k, recommendFormat == "json")
	}
	return prompt(ctx, cmd.InOrStdin(), out, corpus, k)
}

// resolveK returns the configured default unless -k was given explicitly.
// An explicit non-positive value is passed through so Recommend rejects it.
func resolveK(set bool, flagValue, defaultK int) int {
	if set {
		return flagValue
	}
	return defaultK
}

// recommendOnce prints recommendations for one title. An unknown title is
// reported to the user, not returned as an error.
func recommendOnce(w io.Writer, corpus *recommend.Corpus, title string, k int, asJSON bool) error {
	recs, err := corpus.Recommend(title, k)
	metrics.ObserveRecommendation("cli", err)
	if errors.Is(err, recommend.ErrNotFound) {
		fmt.Fprintf(w, "Sorry, the book %q was not found in the catalog.\n", strings.TrimSpace(title))
		return nil
	}
	if err != nil {
		return err
	}

	query, _ := corpus.Lookup(title)

	if asJSON {
		output, err := json.MarshalIndent(map[string]any{
			"query":           query,
			"recommendations": recs,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	printRecommendations(w, query, recs)
	return nil
}

func printRecommendations(w io.Writer, query models.Book, recs []models.Recommendation) {
	fmt.Fprintf(w, "Because you liked '%s' by %s, you might also like:\n\n", query.Title, query.Author)
	if len(recs) == 0 {
		fmt.Fprintln(w, "  (no other books in the catalog)")
		return
	}
	for _, r := range recs {
		fmt.Fprintf(w, "- %s by %s (Similarity Score: %.2f)\n", r.Book.Title, r.Book.Author, r.Score)
	}
}

// prompt reads titles line by line until 'exit', EOF or cancellation.
func prompt(ctx context.Context, r io.Reader, w io.Writer, corpus *recommend.Corpus, k int) error {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "\nEnter a book title (or type 'exit' to quit): ")
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case strings.EqualFold(input, "exit"):
			fmt.Fprintln(w, "\nThanks for using bookrec. Goodbye!")
			return nil
		}

		fmt.Fprintln(w)
		if err := recommendOnce(w, corpus, input, k, false); err != nil {
			return err
		}
	}
}
