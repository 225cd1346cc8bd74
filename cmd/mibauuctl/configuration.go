package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/casq89/mibauu-backend/pkg/config"
)

var configurationCmd = &cobra.Command{
	Use:     "configuration",
	Aliases: []string{"config"},
	Short:   "Inspect and check the mibauu backend settings",
}

var configurationValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the selected drivers have everything they need",
	Long: `Load the configuration the way "mibauuctl server" does and check it.

Besides field formats, each selected backend is checked for its own
settings: the supabase drivers need SUPABASE_URL and SUPABASE_ANON_KEY,
the postgres store and local sign-in need DATABASE_URL, and local
sign-in needs a MIBAUU_JWT_SECRET of at least 32 characters.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateConfiguration(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration is not usable: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(configurationCmd)
	configurationCmd.AddCommand(configurationValidateCmd)
}

func validateConfiguration(w io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "records: %s\nimages:  %s (bucket %s)\nsign-in: %s\n",
		cfg.StoreDriver, cfg.StorageDriver, cfg.Bucket, cfg.AuthDriver)
	return err
}
