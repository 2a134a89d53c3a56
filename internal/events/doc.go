// Package events lets services request background work without depending on
// the task package.
//
// A service builds an Event with NewEvent and hands it to an EventEmitter.
// InMemoryEventEmitter forwards it synchronously to every registered
// EventHandler; the task package registers the handler that turns events into
// queued tasks.
package events
