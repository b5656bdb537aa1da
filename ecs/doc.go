// Package ecs provides ECS adapters for canopy's gesture events.
//
// The primary adapter is [NewDonburiStore], which bridges canopy interaction
// events (touchstart, touchmove, touchend, tap, link) into a [Donburi] world
// as typed events. Subscribe to [InteractionEventType] in your ECS systems to
// receive them, and tag nodes with [canopy.Node.EntityID] to correlate them
// with entities.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	stage.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
