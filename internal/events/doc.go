// Package events lets services announce learner milestones without knowing
// who consumes them.
//
// The primary components are:
// - Event: a typed notification with a JSON payload
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
