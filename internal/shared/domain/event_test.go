package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/atelier/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	domain.BaseEvent
}

func TestNewBaseEventAt(t *testing.T) {
	aggregateID := uuid.New()
	at := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	event := domain.NewBaseEventAt(aggregateID, "TestAggregate", "test.event.created", at)

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "TestAggregate", event.AggregateType())
	assert.Equal(t, "test.event.created", event.RoutingKey())
	assert.Equal(t, at, event.OccurredAt())
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := newTestEvent(uuid.New())
	metadata := domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		UserID:        uuid.New(),
		Role:          "admin",
	}

	event.SetMetadata(metadata)

	assert.Equal(t, metadata, event.Metadata())
}
