package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/georoute/importer"
)

type indexOutput struct {
	Path    string `json:"path"`
	File    string `json:"file"`
	Level   uint8  `json:"level"`
	Entries int    `json:"entries"`
}

func newIndexCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "index <database>",
		Short: "Build the area route index of a database",
		Long: `Builds the spatial route index of a configured database from its route
node data, using the importer section of the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := c.database(args[0])
			if err != nil {
				return err
			}

			gen := importer.NewAreaRouteIndexGenerator(c.logger.Logger)
			if err := gen.Import(ctx, db, c.cfg.Importer); err != nil {
				return err
			}

			idx, err := importer.LoadAreaRouteIndex(ctx, db.BlobStore())
			if err != nil {
				return err
			}
			return c.print(cmd, indexOutput{
				Path:    db.Path,
				File:    importer.AreaRouteIndexFile,
				Level:   idx.Level,
				Entries: len(idx.Entries),
			})
		},
	}
}
