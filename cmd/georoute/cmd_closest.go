package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/georoute/codec"
)

type closestOutput struct {
	Position codec.Position `json:"position"`
	Path     string         `json:"database_path,omitempty"`
	Node     *codec.Node    `json:"node,omitempty"`
}

func newClosestCmd(c *cli) *cobra.Command {
	var (
		at     string
		hint   string
		radius float64
	)

	cmd := &cobra.Command{
		Use:   "closest",
		Short: "Find the closest routable node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			coord, err := parseCoord(at)
			if err != nil {
				return err
			}

			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			pos, err := svc.GetClosestRoutableNode(ctx, coord, radius, hint)
			if err != nil {
				return err
			}
			out := closestOutput{Position: codec.NewPosition(pos)}
			if pos.Valid() {
				n, err := svc.GetRouteNodeByOffset(ctx, pos.Locator())
				if err != nil {
					return err
				}
				node := codec.NewNode(n)
				out.Node = &node
				out.Path = svc.Databases()[pos.Database].Path
			}
			return c.print(cmd, out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&at, "at", "", "coordinate lat,lon")
	f.StringVar(&hint, "hint", "", "database asked first")
	f.Float64Var(&radius, "radius", 1, "search radius in km")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}
