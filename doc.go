// Package georoute provides offline routing over one or more independently
// built map databases.
//
// A Service registers databases in order and assigns each a DatabaseID.
// Queries inside one database are answered by that database's router.
// Queries whose start and target lie in different databases match both
// route graphs on a fixed geographic cell grid, verify the candidate nodes
// by their stored coordinates and search the merged graph, crossing between
// databases only at the verified nodes.
//
// # Quick Start
//
//	svc, _ := georoute.New([]routedb.Database{
//	    {Path: "./data/north", RouterDataMMap: true},
//	    {Path: "./data/south"},
//	}, georoute.WithLogger(georoute.NewTextLogger(slog.LevelInfo)))
//
//	ctx := context.Background()
//	if err := svc.Open(ctx, georoute.DefaultProfileBuilder); err != nil {
//	    return err
//	}
//	defer svc.Close()
//
//	start, _ := svc.GetClosestRoutableNode(ctx, from, 1.0, "./data/north")
//	target, _ := svc.GetClosestRoutableNode(ctx, to, 1.0, "")
//	res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
//	if res.Success() {
//	    for _, e := range res.Route.Entries() {
//	        fmt.Println(e.Database, e.NodeID, e.Coord)
//	    }
//	}
//
// # Results
//
// CalculateRoute never fails for an unreachable target: the result then has
// no route and a nil Err. Err is reserved for I/O failures and
// cancellation of the context.
//
// # Resources
//
// Record caches are sized per database with WithFileCacheSizes and may be
// bounded in bytes, together with match concurrency and scan IO, by a
// shared resource.Controller (WithResourceController).
package georoute
