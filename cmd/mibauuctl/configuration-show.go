package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/casq89/mibauu-backend/pkg/config"
)

var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List every setting with the place it was read from",
	Long: `List every setting with its source: default, file or environment.

The file is mibauu.yml under MIBAUU_CONFIG_PATH (default /etc/mibauu).
The platform key, database URL and JWT secret are printed as ********.
A running server may have started with different values.

Example:
  mibauuctl configuration show
  mibauuctl config show -o json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := showConfiguration(os.Stdout, output); err != nil {
			fmt.Fprintf(os.Stderr, "configuration show: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(w io.Writer, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch output {
	case "json":
		data, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, data)
		return err
	case "text":
		_, err = fmt.Fprint(w, cfg.FormatText())
		return err
	default:
		return fmt.Errorf("unknown output format %q (text or json)", output)
	}
}
