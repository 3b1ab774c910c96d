// Package queue carries reservation events over RabbitMQ: a publisher used
// by the booking service and a consumer that appends every event to an
// audit log.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// AuditFile is the file, under the configured log directory, that the
// consumer appends to.
const AuditFile = "reservations.log"

// decodeEvent parses a message body and rejects events missing the fields
// the audit line needs.
func decodeEvent(body []byte) (model.ReservationEvent, error) {
	var ev model.ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.ReservationID == "" {
		return ev, fmt.Errorf("event missing type or reservation id")
	}
	return ev, nil
}

// auditLine renders one event as a single human-readable line.
func auditLine(ev model.ReservationEvent) string {
	return fmt.Sprintf("[%s] %s | reservation_id=%s | restaurant_id=%d | space_id=%d | date=%s | window=%s-%s | party=%d | status=%s\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.ReservationID, ev.RestaurantID, ev.SpaceID,
		ev.Date, ev.StartTime, ev.EndTime, ev.PartySize, ev.Status)
}
