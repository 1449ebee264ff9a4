// Package queue defines the lifecycle events the service announces over the
// message broker and the publisher that sends them.
package queue

import "time"

const (
	EventStarted  = "started"
	EventStopping = "stopping"
)

// LifecycleEvent is published when an instance starts serving and when it
// begins a graceful shutdown. Consumers can use it to track which
// application-tier instances are live without polling /health.
type LifecycleEvent struct {
	Event    string `json:"event"`
	Service  string `json:"service"`
	Instance string `json:"instance"`
	Addr     string `json:"addr"`
	Env      string `json:"env"`
	At       string `json:"at"`
}

// NewLifecycleEvent stamps an event with the current UTC time.
func NewLifecycleEvent(kind, service, instance, addr, env string) LifecycleEvent {
	return LifecycleEvent{
		Event:    kind,
		Service:  service,
		Instance: instance,
		Addr:     addr,
		Env:      env,
		At:       time.Now().UTC().Format(time.RFC3339),
	}
}
