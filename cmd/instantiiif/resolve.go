package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greut/instantiiif/iiif"
)

type pageInfo struct {
	Page      int    `json:"page" yaml:"page"`
	Width     int    `json:"width" yaml:"width"`
	Height    int    `json:"height" yaml:"height"`
	ServiceID string `json:"service,omitempty" yaml:"service,omitempty"`
}

type resolveOutput struct {
	iiif.ObjectInfo `yaml:",inline"`
	Page            pageInfo `json:"selected" yaml:"selected"`
}

func newResolveCmd() *cobra.Command {
	var (
		format string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "resolve <title>",
		Short: "Resolve a title to its IIIF manifest",
		Example: `  instantiiif resolve Df_dk_0007450.jpg
  instantiiif resolve "Df dk 0007450.jpg" --page 2 --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			repo, closer, err := newRepo(configFromContext(ctx), logger)
			if err != nil {
				return err
			}
			defer closer()

			resolver := repo.Resolver(args[0])
			info := iiif.Describe(ctx, resolver)
			if info == nil {
				return fmt.Errorf("%q cannot be resolved (object id %q)", args[0], resolver.ObjectID())
			}

			page = iiif.NormalizePage(page)
			width, height := resolver.Dimensions(ctx, page)
			out := resolveOutput{
				ObjectInfo: *info,
				Page: pageInfo{
					Page:      page,
					Width:     width,
					Height:    height,
					ServiceID: resolver.ServiceID(ctx, page),
				},
			}
			return writeOutput(cmd.OutOrStdout(), format, out)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().IntVar(&page, "page", 1, "page to describe")

	return cmd
}
