package domain

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is the consistency boundary that owns pending domain events.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
	Version() int
}

// BaseAggregateRoot holds pending events and the optimistic-lock version.
type BaseAggregateRoot struct {
	BaseEntity
	pending []DomainEvent
	version int
}

// NewBaseAggregateRootAt creates an unsaved aggregate at version zero.
func NewBaseAggregateRootAt(id uuid.UUID, at time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntityAt(id, at)}
}

// RehydrateBaseAggregateRoot recreates an aggregate from persisted state.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: entity,
		version:    version,
	}
}

// DomainEvents returns a copy of the events raised since the last clear.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return append([]DomainEvent(nil), a.pending...)
}

// ClearDomainEvents drops pending events once they are in the outbox.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// AddDomainEvent records an event for the outbox.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// Version returns the version the aggregate was loaded or last saved at.
func (a *BaseAggregateRoot) Version() int {
	return a.version
}

// IncrementVersion is called after a successful save.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.version++
}
