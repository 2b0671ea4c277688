package outbox

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/tradeyard/tradeyard-backend/pkg/db/models"
	"github.com/tradeyard/tradeyard-backend/pkg/enums"
)

func TestEmitIfNotExistsDeduplicates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)
	ctx := context.Background()
	aggregateID := uuid.New()

	event := DomainEvent{
		EventType:     enums.EventOrderSettled,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Version:       1,
		Data:          map[string]string{"orderId": aggregateID.String()},
	}

	if err := svc.EmitIfNotExists(ctx, db, event); err != nil {
		t.Fatalf("first emit: %v", err)
	}
	if err := svc.EmitIfNotExists(ctx, db, event); err != nil {
		t.Fatalf("second emit: %v", err)
	}

	var count int64
	if err := db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", aggregateID).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single queued event got %d", count)
	}

	if err := svc.EmitIfNotExists(ctx, nil, event); err == nil {
		t.Fatalf("expected error without transaction")
	}
}
