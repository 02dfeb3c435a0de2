// Package tiler splits a camera's frame into a grid of tiles and builds one
// camera and one render task per tile in a host scene graph, so that the
// tiles can be rendered independently and reassembled into the full frame.
//
// # Quick start
//
// Build against any [Host]. [Graph] is an in-memory host useful for tests and
// dry runs:
//
//	g := tiler.NewGraph()
//	g.Insert("/obj", tiler.NewCamera("cam1", tiler.Resolution{Width: 3840, Height: 2160}))
//	g.Insert("/out", tiler.NewRenderTask("rop1", "/obj/cam1", "/renders/beauty.exr"))
//
//	b := tiler.NewBuilder(g, tiler.BuildConfig{})
//	res, err := b.BuildTiledRender(tiler.BuildRequest{
//		CameraPath:  "/obj/cam1",
//		TaskPath:    "/out/rop1",
//		TilesX:      4,
//		TilesY:      4,
//		Destination: "/obj/CAM_TILES",
//	})
//
// # Tile geometry
//
// [MapTile] converts a grid coordinate into a camera frame window. Each tile
// covers 1/TilesX by 1/TilesY of the frame and is labelled "uXX_vYY". Tile
// cameras render at the source resolution divided by the tile counts,
// truncated.
//
// # Generated graph
//
// For every invocation the destination container is destroyed and rebuilt.
// It holds one indirection node carrying the source camera's transform, one
// camera per tile wired to it, and a TILE_OUTPUTS container with one render
// task per tile merged, in row-major order, into an OUT merge node. Every
// task writes to {dir}/{timestamp}/{task}{file}, where the timestamp is taken
// once per invocation, so runs never overwrite each other.
//
// [NewPlan] computes the same tiles without a host, which is what the
// preview package draws.
//
// Build progress can be observed with an [EventSink]; the ecs submodule
// forwards events into a [Donburi] world.
//
// [Donburi]: https://github.com/yohamta/donburi
package tiler
