package workflows

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/usecases"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/metrics"
)

// ExpiredHold identifies one unpaid ticket whose payment deadline passed.
type ExpiredHold struct {
	TicketID string
	TripID   string
	Phone    string
}

// HoldExpiryActivities holds the activity implementations for the
// hold-expiry workflow.
type HoldExpiryActivities struct {
	Scanner  ports.HoldScanner
	Tickets  *usecases.TicketService
	Notifier ports.NotificationService
	Now      func() time.Time
}

// ListExpiredHolds returns up to limit unpaid tickets past their deadline.
func (a *HoldExpiryActivities) ListExpiredHolds(ctx context.Context, limit int) ([]ExpiredHold, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	tickets, err := a.Scanner.ListExpiredHolds(ctx, now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list expired holds: %w", err)
	}

	holds := make([]ExpiredHold, 0, len(tickets))
	for _, t := range tickets {
		h := ExpiredHold{TicketID: t.ID, TripID: t.TripID}
		if len(t.Passengers) > 0 {
			h.Phone = t.Passengers[0].Phone
		}
		holds = append(holds, h)
	}
	return holds, nil
}

// CancelExpiredTicket voids the ticket and releases its seats. The service
// publishes the seat-release events so booking frontends update live.
func (a *HoldExpiryActivities) CancelExpiredTicket(ctx context.Context, ticketID string) error {
	if _, err := a.Tickets.Cancel(ctx, ticketID); err != nil {
		return fmt.Errorf("cancel ticket %s: %w", ticketID, err)
	}
	metrics.HoldsExpired.Inc()
	return nil
}

// NotifyHoldExpired tells the booker their seats were released.
func (a *HoldExpiryActivities) NotifyHoldExpired(ctx context.Context, phone, ticketID string) error {
	if a.Notifier == nil {
		log.Printf("SMS (no notifier) → phone=%s ticket=%s hold expired", phone, ticketID)
		return nil
	}
	msg := fmt.Sprintf("Your seat hold for booking %s expired without payment. The seats have been released.", ticketID)
	return a.Notifier.SendSMS(ctx, phone, msg)
}
