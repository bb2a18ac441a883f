package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/autocateg"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/catalog"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/storage"
)

var (
	applyThreshold int
	applyDryRun    bool
)

var applyCmd = &cobra.Command{
	Use:   "apply [run-id]",
	Short: "Push selected suggestions back to the catalog in batches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := resolveRun(store, args)
		if err != nil {
			return err
		}

		suggestions, err := store.GetSuggestions(run.ID, storage.SuggestionFilter{
			OnlySelected:  true,
			OnlyUnapplied: true,
		})
		if err != nil {
			return err
		}

		results := make([]autocateg.MatchResult, len(suggestions))
		for i, s := range suggestions {
			results[i] = s.MatchResult()
		}

		accepted := autocateg.Accepted(results, applyThreshold)
		if len(accepted) == 0 {
			fmt.Println("Nothing to apply. Select suggestions first: autocateg select")
			return nil
		}

		if applyDryRun {
			fmt.Printf("Would apply %d suggestion(s) from run %s:\n\n", len(accepted), run.ID)
			for _, r := range accepted {
				fmt.Printf("  %-12s %3d  %s\n", r.SKU, r.Confidence, r.SuggestedPath)
			}
			return nil
		}

		client, err := newCatalogClient(store)
		if err != nil {
			return err
		}

		report, applyErr := autocateg.Apply(ctx, client, results, applyThreshold)
		if applyErr != nil {
			log.Warn().Err(applyErr).Msg("apply interrupted")
		}

		if len(report.AppliedSKUs) > 0 {
			if err := store.MarkApplied(run.ID, report.AppliedSKUs); err != nil {
				return err
			}
		}

		fmt.Println(formatText(`
			Run %s

			  Accepted:  %d
			  Batches:   %d
			  Applied:   %d
		`, run.ID, report.Accepted, report.Batches, report.Applied))
		for _, e := range report.Errors {
			fmt.Printf("  error: %s\n", e)
		}

		if applyErr != nil {
			return applyErr
		}
		if len(report.Errors) > 0 {
			return fmt.Errorf("%d batch(es) failed", len(report.Errors))
		}
		return nil
	},
}

var (
	loginToken    string
	loginNoVerify bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the catalog API token, encrypted, in the local database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := loginToken
		if token == "" {
			fmt.Print("API token: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return err
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return errors.New("no token given")
		}

		if !loginNoVerify {
			client := catalog.NewClient(catalog.ClientOpts{
				BaseURL: resolveBaseURL(),
				Auth:    "Bearer " + token,
			})
			if _, err := client.GetCategoryTree(cmd.Context()); err != nil {
				return fmt.Errorf("token rejected by the catalog API: %w", err)
			}
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveCredentials(resolveBaseURL(), token); err != nil {
			if errors.Is(err, storage.ErrNoEncryptionKey) {
				return errors.New("set AUTOCATEG_TOKEN_KEY so the token can be stored encrypted")
			}
			return err
		}

		fmt.Println("Token saved.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteCredentials(); err != nil {
			return err
		}
		fmt.Println("Token removed.")
		return nil
	},
}

func init() {
	applyCmd.Flags().IntVar(&applyThreshold, "threshold", autocateg.DefaultThreshold, "apply only suggestions at or above this confidence")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "print what would be applied without calling the API")

	loginCmd.Flags().StringVar(&loginToken, "token", "", "token value (prompted for when omitted)")
	loginCmd.Flags().BoolVar(&loginNoVerify, "no-verify", false, "skip checking the token against the API")
}
