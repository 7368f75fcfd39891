package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ngmaloney/prop-buddy/internal/geocoding"
	"github.com/ngmaloney/prop-buddy/internal/models"
	"github.com/ngmaloney/prop-buddy/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search [address...]",
	Short: "Look up school zones, nearest station and ancestry for an address",
	Long: "Resolves the address with Nominatim, then matches school catchments, finds the " +
		"nearest rail station and looks up the suburb's ancestry. Text shared from another " +
		"app can be passed with --shared-text or --shared-url instead of arguments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sharedText, _ := cmd.Flags().GetString("shared-text")
		sharedURL, _ := cmd.Flags().GetString("shared-url")
		asJSON, _ := cmd.Flags().GetBool("json")

		text := addressFrom(args, sharedText, sharedURL)
		if text == "" {
			return eris.New("search: an address is required")
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}

		res, err := a.service.Search(ctx, text)
		if err != nil {
			if eris.Is(err, geocoding.ErrNotFound) {
				return fmt.Errorf("address not found: %s", text)
			}
			return err
		}
		return writeResult(os.Stdout, res, asJSON)
	},
}

// addressFrom picks the address from positional args, then shared text,
// then a shared URL.
func addressFrom(args []string, sharedText, sharedURL string) string {
	if s := strings.TrimSpace(strings.Join(args, " ")); s != "" {
		return s
	}
	if s := strings.TrimSpace(sharedText); s != "" {
		return s
	}
	return strings.TrimSpace(sharedURL)
}

func writeResult(w io.Writer, res *models.SearchResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return eris.Wrap(err, "search: encode result")
		}
		return nil
	}
	_, err := fmt.Fprintln(w, ui.RenderResult(res))
	return err
}

func init() {
	searchCmd.Flags().String("shared-text", "", "address text shared from another app")
	searchCmd.Flags().String("shared-url", "", "shared url, used when no text was shared")
	searchCmd.Flags().Bool("json", false, "print the result as JSON")

	rootCmd.AddCommand(searchCmd)
}
