package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/georoute/codec"
	"github.com/hupe1980/georoute/model"
)

type inspectOutput struct {
	Path       string        `json:"path"`
	RouteNodes uint32        `json:"route_nodes"`
	Junctions  uint32        `json:"junctions"`
	Variants   int           `json:"variants"`
	Nodes      []inspectNode `json:"nodes,omitempty"`
	Memory     *memoryOutput `json:"memory,omitempty"`
}

// memoryOutput reports the record cache charge against the configured limit.
type memoryOutput struct {
	LimitBytes int64 `json:"limit_bytes"`
	UsedBytes  int64 `json:"used_bytes"`
}

type inspectNode struct {
	codec.Node
	Junction []string `json:"junction,omitempty"`
}

func newInspectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <database> [node-id...]",
		Short: "Show the contents of a database",
		Long: `Prints the record counts of a configured database and, for every given
node id, the route node together with its junction objects.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := c.database(args[0])
			if err != nil {
				return err
			}
			ids := make([]model.ID, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := strconv.ParseUint(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("node id %q: %w", arg, err)
				}
				ids = append(ids, model.ID(id))
			}

			files, err := c.openFiles(ctx, db)
			if err != nil {
				return err
			}
			defer files.Close()

			out := inspectOutput{
				Path:       db.Path,
				RouteNodes: files.RouteNodes().Count(),
				Junctions:  files.Junctions().Count(),
				Variants:   files.Variants().Len(),
			}
			for _, id := range ids {
				n, ok, err := files.RouteNodes().Get(ctx, id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("route node %d not found", id)
				}
				entry := inspectNode{Node: codec.NewNode(n)}
				j, ok, err := files.Junctions().Get(ctx, id)
				if err != nil {
					return err
				}
				if ok {
					for _, o := range j.Objects {
						entry.Junction = append(entry.Junction, o.String())
					}
				}
				out.Nodes = append(out.Nodes, entry)
			}
			if c.rc != nil {
				out.Memory = &memoryOutput{
					LimitBytes: c.rc.MemoryLimit(),
					UsedBytes:  c.rc.MemoryUsage(),
				}
			}
			return c.print(cmd, out)
		},
	}
}
