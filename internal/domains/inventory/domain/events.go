package domain

import "time"

// Event is the base interface for inventory domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// UnitsAdded is raised when units enter stock through intake or import.
type UnitsAdded struct {
	BaseEvent
	UnitIDs  []int64  `json:"unitIds"`
	Products []string `json:"products"`
	Source   string   `json:"source"`
}

// EventName returns the event type identifier.
func (e UnitsAdded) EventName() string {
	return "inventory.unit.added"
}

// UnitsSold is raised after a FIFO sale commits.
type UnitsSold struct {
	BaseEvent
	Product string  `json:"product"`
	UnitIDs []int64 `json:"unitIds"`
}

// EventName returns the event type identifier.
func (e UnitsSold) EventName() string {
	return "inventory.units.sold"
}
