package routedb

import (
	"github.com/hupe1980/georoute/blobstore"
)

// File names inside a database.
const (
	RouteNodeDataFile  = "router.dat"
	RouteNodeIndexFile = "router.idx"
	ObjectVariantFile  = "router2.dat"
	JunctionDataFile   = "intersections.dat"
	JunctionIndexFile  = "intersections.idx"
)

// Database describes one map dataset.
type Database struct {
	// Path identifies the database and, without Store, is the directory
	// holding its files.
	Path string
	// Store overrides the local directory store.
	Store blobstore.BlobStore
	// RouterDataMMap memory-maps the route node data.
	RouterDataMMap bool
}

// BlobStore returns the store the database files are read from.
func (d Database) BlobStore() blobstore.BlobStore {
	if d.Store != nil {
		return d.Store
	}
	return blobstore.NewLocalStore(d.Path)
}

// FilesConfig sizes the caches of a Files bundle.
type FilesConfig struct {
	RouteNodeIndexCacheSize int `yaml:"route_node_index"`
	RouteNodeDataCacheSize  int `yaml:"route_node_data"`
	JunctionIndexCacheSize  int `yaml:"junction_index"`
	JunctionDataCacheSize   int `yaml:"junction_data"`
}

// DefaultFilesConfig returns the default cache sizes.
func DefaultFilesConfig() FilesConfig {
	return FilesConfig{
		RouteNodeIndexCacheSize: 12000,
		RouteNodeDataCacheSize:  1000,
		JunctionIndexCacheSize:  10000,
		JunctionDataCacheSize:   1000,
	}
}
