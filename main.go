package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Syfer2025/Catlogodepeas-sub005/config"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/catalog"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/storage"
)

var (
	verbose  bool
	dbPath   string
	apiURL   string
	apiToken string
)

var rootCmd = &cobra.Command{
	Use:   "autocateg",
	Short: "Heuristic auto-categorization for the Carretão Auto Peças catalog",
	Long: strings.TrimSpace(dedent.Dedent(`
		autocateg scores every product title (plus technical attributes)
		against the store's category tree and suggests where uncategorized
		or misfiled products belong.

		Typical session:

		  autocateg login                   store the API token
		  autocateg analyze                 score the whole catalog
		  autocateg review                  inspect the suggestions
		  autocateg select --min-confidence 85
		  autocateg apply

		Runs and suggestions are kept in a local SQLite database so review
		and apply can happen long after the analysis.
	`)),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnvFile()

		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "suggestion database path (or set AUTOCATEG_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "catalog API base URL (or set CARRETAO_API_URL)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "catalog API token (or set CARRETAO_API_TOKEN)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// openStore opens the suggestion database, creating its directory when
// needed. The encryption key for stored credentials comes from
// AUTOCATEG_TOKEN_KEY and is optional as long as no credentials are used.
func openStore() (*storage.SQLiteStore, error) {
	path := dbPath
	if path == "" {
		path = os.Getenv("AUTOCATEG_DB_PATH")
	}
	if path == "" {
		path = config.DefaultDBPath()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var key []byte
	if passphrase := os.Getenv("AUTOCATEG_TOKEN_KEY"); passphrase != "" {
		var err error
		key, err = storage.DeriveKey(passphrase)
		if err != nil {
			return nil, err
		}
	}

	store, err := storage.NewSQLiteStore(path, key)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("dbPath", path).Msg("suggestion store opened")
	return store, nil
}

func resolveBaseURL() string {
	if apiURL != "" {
		return apiURL
	}
	return os.Getenv("CARRETAO_API_URL")
}

// newCatalogClient builds the API client. Base URL and token resolve flag
// first, then environment, then the credentials saved by "autocateg login";
// an empty base URL after all three falls back to the production default.
func newCatalogClient(store *storage.SQLiteStore) (*catalog.Client, error) {
	baseURL := resolveBaseURL()
	token := apiToken
	if token == "" {
		token = os.Getenv("CARRETAO_API_TOKEN")
	}

	if token == "" || baseURL == "" {
		storedURL, storedToken, err := store.LoadCredentials()
		if err != nil && !errors.Is(err, storage.ErrNoEncryptionKey) {
			return nil, err
		}
		if baseURL == "" {
			baseURL = storedURL
		}
		if token == "" {
			token = storedToken
		}
	}
	if token == "" {
		return nil, errors.New("no API token: pass --token, set CARRETAO_API_TOKEN, or run 'autocateg login'")
	}

	return catalog.NewClient(catalog.ClientOpts{
		BaseURL: baseURL,
		Auth:    "Bearer " + token,
	}), nil
}

func formatText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}
