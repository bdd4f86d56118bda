package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/greut/instantiiif/iiif"
)

type thumbOutput struct {
	iiif.Thumbnail `yaml:",inline"`
	Attributes     map[string]string `json:"attributes" yaml:"attributes"`
}

func newThumbCmd() *cobra.Command {
	var (
		format    string
		namespace string
		params    iiif.Params
	)

	cmd := &cobra.Command{
		Use:   "thumb <title>",
		Short: "Negotiate a thumbnail of a title",
		Example: `  # Largest image at most 1000 pixels wide the service allows
  instantiiif thumb Df_dk_0007450.jpg --width 1000

  # Full size of the second page
  instantiiif thumb Df_dk_0007450.jpg --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			repo, closer, err := newRepo(configFromContext(ctx), logger)
			if err != nil {
				return err
			}
			defer closer()

			thumbnail, err := repo.Resolver(args[0]).Transform(ctx, params)
			if err != nil {
				return err
			}

			dbKey := strings.ReplaceAll(strings.TrimSpace(args[0]), " ", "_")
			out := thumbOutput{
				Thumbnail:  *thumbnail,
				Attributes: iiif.ThumbnailAttributes(namespace, dbKey, thumbnail),
			}
			return writeOutput(cmd.OutOrStdout(), format, out)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&namespace, "namespace", "File", "namespace of the title, for the data attributes")
	cmd.Flags().IntVarP(&params.Width, "width", "w", 0, "requested width, 0 for unspecified")
	cmd.Flags().IntVar(&params.Height, "height", 0, "requested height, 0 for unspecified")
	cmd.Flags().IntVar(&params.Page, "page", 1, "page")

	return cmd
}
