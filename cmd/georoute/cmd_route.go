package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/georoute/codec"
	"github.com/hupe1980/georoute/model"
)

type routeOutput struct {
	Start  codec.Position `json:"start"`
	Target codec.Position `json:"target"`
	Route  codec.Route    `json:"route"`
}

func newRouteCmd(c *cli) *cobra.Command {
	var (
		from, to     string
		fromDB, toDB string
		radius       float64
		interval     int
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Calculate a route between two coordinates",
		Long: `Snaps both coordinates to the closest routable node and calculates the
cheapest route between them. --from-db and --to-db name the database to
ask first for each endpoint.

Example:
  georoute route -c georoute.yaml --from 50.1,8.6 --to 50.2,8.7`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			fromCoord, err := parseCoord(from)
			if err != nil {
				return err
			}
			toCoord, err := parseCoord(to)
			if err != nil {
				return err
			}

			svc, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			start, err := svc.GetClosestRoutableNode(ctx, fromCoord, radius, fromDB)
			if err != nil {
				return err
			}
			if !start.Valid() {
				return fmt.Errorf("no routable node within %.3f km of %s", radius, fromCoord)
			}
			target, err := svc.GetClosestRoutableNode(ctx, toCoord, radius, toDB)
			if err != nil {
				return err
			}
			if !target.Valid() {
				return fmt.Errorf("no routable node within %.3f km of %s", radius, toCoord)
			}

			res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{CancelCheckInterval: interval})
			if res.Err != nil {
				return res.Err
			}
			return c.print(cmd, routeOutput{
				Start:  codec.NewPosition(start),
				Target: codec.NewPosition(target),
				Route:  codec.NewRoute(res),
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&from, "from", "", "start coordinate lat,lon")
	f.StringVar(&to, "to", "", "target coordinate lat,lon")
	f.StringVar(&fromDB, "from-db", "", "database asked first for the start")
	f.StringVar(&toDB, "to-db", "", "database asked first for the target")
	f.Float64Var(&radius, "radius", 1, "snap radius in km")
	f.IntVar(&interval, "cancel-interval", model.DefaultCancelCheckInterval, "node expansions between cancellation checks")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
