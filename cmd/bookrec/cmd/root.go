package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfenderov/bookrec/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "bookrec",
	Short: "bookrec: content-based book recommendations",
	Long: `bookrec recommends books similar to a title you liked by comparing
titles, authors, descriptions and categories with TF-IDF cosine similarity.

Commands:
  collect    Fill catalog gaps from Google Books and Goodreads
  clean      Deduplicate and normalize the catalog
  build      Compute and save the similarity matrix
  recommend  Recommend books for a title (one-shot or interactive)
  search     Keyword search over the indexed catalog
  serve      Serve recommendations over MCP (stdio) or HTTP`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/bookrec")
		viper.AddConfigPath(".")
	}

	// BOOKREC_CATALOG_MATRIX_PATH -> catalog.matrix_path
	viper.SetEnvPrefix("BOOKREC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so nested env vars are
	// bound explicitly.
	for _, key := range []string{
		"catalog.raw_path",
		"catalog.cleaned_path",
		"catalog.matrix_path",
		"vectorizer.min_doc_frequency",
		"recommender.default_k",
		"recommender.max_k",
		"recommender.workers",
		"googlebooks.enabled",
		"googlebooks.base_url",
		"googlebooks.api_key",
		"googlebooks.requests_per_second",
		"scraper.enabled",
		"scraper.delay",
		"scraper.user_agent",
		"storage.enabled",
		"storage.endpoint",
		"storage.bucket",
		"storage.access_key_id",
		"storage.secret_access_key",
		"storage.use_ssl",
		"elasticsearch.enabled",
		"elasticsearch.index",
		"elasticsearch.username",
		"elasticsearch.password",
		"mcp.name",
		"mcp.version",
		"http.addr",
	} {
		viper.BindEnv(key, "BOOKREC_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Comma-separated lists from env
	if addrs := os.Getenv("BOOKREC_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
	if words := os.Getenv("BOOKREC_VECTORIZER_STOP_WORDS"); words != "" {
		cfg.Vectorizer.StopWords = strings.Split(words, ",")
	}
}
