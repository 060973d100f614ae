package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// HoldExpiryInput is the input for the hold-expiry sweep workflow.
type HoldExpiryInput struct {
	// BatchSize limits how many expired holds one sweep processes.
	BatchSize int
}

// HoldExpiryWorkflow cancels unpaid tickets whose payment deadline has
// passed, releasing their seats. It runs one sweep: list expired holds,
// cancel each, notify the booker. Scheduled periodically by the worker.
func HoldExpiryWorkflow(ctx workflow.Context, input HoldExpiryInput) error {
	logger := workflow.GetLogger(ctx)

	if input.BatchSize <= 0 {
		input.BatchSize = 100
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: collect expired holds
	var expired []ExpiredHold
	err := workflow.ExecuteActivity(ctx, "ListExpiredHolds", input.BatchSize).Get(ctx, &expired)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}
	logger.Info("Expiring seat holds", "count", len(expired))

	// Step 2: cancel each ticket; a single failure does not abort the sweep
	var cancelled int
	for _, hold := range expired {
		if err := workflow.ExecuteActivity(ctx, "CancelExpiredTicket", hold.TicketID).Get(ctx, nil); err != nil {
			logger.Warn("cancel expired ticket failed", "ticketID", hold.TicketID, "error", err)
			continue
		}
		cancelled++

		// Step 3: tell the booker their hold lapsed; best effort
		if hold.Phone != "" {
			_ = workflow.ExecuteActivity(ctx, "NotifyHoldExpired", hold.Phone, hold.TicketID).Get(ctx, nil)
		}
	}

	logger.Info("Hold-expiry sweep complete", "expired", len(expired), "cancelled", cancelled)
	return nil
}
