// Package ecs provides ECS adapters for gravit's document change events.
//
// The primary adapter is [NewDonburiStore], which bridges scene events
// (property changes, child insertion and removal, flag changes,
// invalidations) into a [Donburi] world as typed events. Subscribe to
// [ChangeEventType] in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
