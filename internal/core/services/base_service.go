package services

import (
	"context"
	"fmt"
	"time"

	"github.com/clearbooks/finance_core_app/internal/apperrors"
	"github.com/clearbooks/finance_core_app/internal/platform/audit"
)

const dateLayout = "2006-01-02"

// parseDate parses a YYYY-MM-DD request date.
func parseDate(field string, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD date, got %q", apperrors.ErrValidation, field, value)
	}
	return t, nil
}

// publishAudit emits an audit event when a publisher is configured.
// Auditing never fails the business operation.
func publishAudit(ctx context.Context, pub audit.Publisher, action, entityType, entityID, actorID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, audit.Event{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		At:         time.Now().UTC(),
	})
}
