// Package ecs provides ECS adapters for tiler's build events.
//
// The primary adapter is [NewDonburiSink], which bridges build events
// (subgraph replaced, tile created, executed, rolled back) into a [Donburi]
// world as typed events. Subscribe to [TileEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	b := tiler.NewBuilder(host, tiler.BuildConfig{Events: sink})
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
