package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/georoute"
	"github.com/hupe1980/georoute/codec"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/profile"
	"github.com/hupe1980/georoute/resource"
	"github.com/hupe1980/georoute/routedb"
)

// cli holds the state shared by all commands of one invocation.
type cli struct {
	configPath string
	databases  []string
	mmap       bool
	codecName  string
	logLevel   string

	cfg    Config
	logger *georoute.Logger
	codec  codec.Codec
	// rc is shared by every store and matcher of the invocation; nil
	// without configured limits.
	rc *resource.Controller
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "georoute",
		Short: "Offline routing over one or more route databases",
		Long: `georoute answers routing queries over route databases built offline.

Databases are registered in the order given by the config file or by
repeated --db flags. Routes between databases cross at the route nodes
both databases share.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "YAML config file")
	pf.StringArrayVar(&c.databases, "db", nil, "database directory (repeatable, replaces the configured databases)")
	pf.BoolVar(&c.mmap, "mmap", false, "memory-map route node data of --db databases")
	pf.StringVar(&c.codecName, "codec", "", "output codec (json, go-json)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newRouteCmd(c),
		newClosestCmd(c),
		newMatchCmd(c),
		newInspectCmd(c),
		newIndexCmd(c),
	)
	return root
}

func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if len(c.databases) > 0 {
		cfg.Databases = cfg.Databases[:0]
		for _, path := range c.databases {
			cfg.Databases = append(cfg.Databases, DatabaseConfig{Path: path, MMap: c.mmap})
		}
	}
	if c.codecName != "" {
		cfg.Output.Codec = c.codecName
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := parseLevel(cfg.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		c.logger = georoute.NewLogger(slog.NewJSONHandler(cmd.ErrOrStderr(), opts))
	} else {
		c.logger = georoute.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
	}

	out, ok := codec.ByName(cfg.Output.Codec)
	if !ok {
		return fmt.Errorf("unknown codec %q", cfg.Output.Codec)
	}
	switch out.(type) {
	case codec.JSON:
		out = codec.JSON{Indent: cfg.Output.Indent}
	case codec.GoJSON:
		out = codec.GoJSON{Indent: cfg.Output.Indent}
	}
	c.codec = out
	c.cfg = cfg
	c.rc = cfg.ResourceController()
	return nil
}

// openService opens all configured databases.
func (c *cli) openService(ctx context.Context) (*georoute.Service, error) {
	svc, err := georoute.New(c.cfg.RouterDatabases(),
		georoute.WithLogger(c.logger),
		georoute.WithResourceController(c.rc),
		georoute.WithFileCacheSizes(c.cfg.Cache),
		georoute.WithMatcherCellCache(c.cfg.Matcher.CellCache),
	)
	if err != nil {
		return nil, err
	}
	err = svc.Open(ctx, func(routedb.Database) (profile.Profile, error) {
		return profile.New(c.cfg.Profile)
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (c *cli) print(cmd *cobra.Command, v any) error {
	b, err := c.codec.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

// parseCoord parses "lat,lon".
func parseCoord(s string) (model.GeoCoord, error) {
	latS, lonS, ok := strings.Cut(s, ",")
	if !ok {
		return model.GeoCoord{}, fmt.Errorf("coordinate %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return model.GeoCoord{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonS), 64)
	if err != nil {
		return model.GeoCoord{}, fmt.Errorf("coordinate %q: %w", s, err)
	}
	coord := model.GeoCoord{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return model.GeoCoord{}, fmt.Errorf("coordinate %q: out of range", s)
	}
	return coord, nil
}
