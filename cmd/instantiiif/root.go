package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/greut/instantiiif/config"
)

func newRootCmd() *cobra.Command {
	var (
		configFile string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "instantiiif",
		Short: "Show IIIF images as if they were local files",
		Long: `instantiiif maps wiki file titles to IIIF Presentation manifests of
configured providers, and negotiates thumbnail requests against the size
limits of their Image API services.

The configuration file is given with --config or $INSTANTIIIF_CONFIG; a .env
file in the working directory is loaded first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := newLogger(os.Stderr, level)

			c, err := config.Load(configFile)
			if err != nil {
				return err
			}

			ctx := withLogger(cmd.Context(), logger)
			cmd.SetContext(withConfig(ctx, c))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file (.toml, .yaml or .jsonc)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newThumbCmd())

	return cmd
}
