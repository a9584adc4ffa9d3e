// Package ecs provides ECS adapters for arcard viewer events.
//
// The primary adapter is [NewDonburiSink], which bridges viewer events
// (state changes, commits, flips, taps) into a [Donburi] world as typed
// events. Subscribe to [CardEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	viewer.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
