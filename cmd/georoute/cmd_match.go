package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/georoute/matcher"
	"github.com/hupe1980/georoute/routedb"
)

type matchOutput struct {
	First            string          `json:"first"`
	Second           string          `json:"second"`
	Cells            uint64          `json:"cells"`
	FirstCandidates  uint64          `json:"first_candidates"`
	SecondCandidates uint64          `json:"second_candidates"`
	Crossings        []crossingEntry `json:"crossings"`
}

type crossingEntry struct {
	FirstID  uint64  `json:"first_id"`
	SecondID uint64  `json:"second_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

func newMatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "match <first> <second>",
		Short: "List the route nodes two databases share",
		Long: `Matches two configured databases, given by path, on the cell grid and
prints the candidate counts together with the verified crossing nodes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dbs := make([]routedb.Database, 2)
			for i, path := range args {
				db, err := c.database(path)
				if err != nil {
					return err
				}
				dbs[i] = db
			}

			out, err := c.match(ctx, dbs[0], dbs[1])
			if err != nil {
				return err
			}
			return c.print(cmd, out)
		},
	}
}

// database returns the configured database registered under path.
func (c *cli) database(path string) (routedb.Database, error) {
	for _, db := range c.cfg.RouterDatabases() {
		if db.Path == path {
			return db, nil
		}
	}
	return routedb.Database{}, fmt.Errorf("database %q is not configured", path)
}

func (c *cli) openFiles(ctx context.Context, db routedb.Database) (*routedb.Files, error) {
	files := routedb.NewFiles(c.cfg.Cache,
		routedb.WithLogger(c.logger.Logger),
		routedb.WithResourceController(c.rc),
	)
	if err := files.Open(ctx, db); err != nil {
		_ = files.Close()
		return nil, err
	}
	return files, nil
}

func (c *cli) match(ctx context.Context, first, second routedb.Database) (matchOutput, error) {
	out := matchOutput{First: first.Path, Second: second.Path, Crossings: []crossingEntry{}}

	a, err := c.openFiles(ctx, first)
	if err != nil {
		return out, err
	}
	defer a.Close()
	b, err := c.openFiles(ctx, second)
	if err != nil {
		return out, err
	}
	defer b.Close()

	m := matcher.New(
		matcher.WithLogger(c.logger.Logger),
		matcher.WithResourceController(c.rc),
	)
	res, err := matcher.Match(ctx, m, a, b)
	if errors.Is(err, matcher.ErrNoCommonNodes) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	out.Cells = res.Candidates.Cells
	out.FirstCandidates = res.Candidates.First.GetCardinality()
	out.SecondCandidates = res.Candidates.Second.GetCardinality()
	for _, x := range res.Crossings {
		out.Crossings = append(out.Crossings, crossingEntry{
			FirstID:  uint64(x.First.ID),
			SecondID: uint64(x.Second.ID),
			Lat:      x.First.Coord.Lat,
			Lon:      x.First.Coord.Lon,
		})
	}
	return out, nil
}
