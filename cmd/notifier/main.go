package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/nats"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/config"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/logging"
)

// smsLogNotifier logs instead of calling an SMS gateway. The real gateway
// integration slots in behind ports.NotificationService.
type smsLogNotifier struct{}

func (smsLogNotifier) SendSMS(ctx context.Context, phone, message string) error {
	slog.Info("SMS", "phone", phone, "message", message)
	return nil
}

func main() {
	cfg, err := config.Load("hesarak-notifier")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("hesarak-notifier", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	var notifier ports.NotificationService = smsLogNotifier{}

	err = sub.SubscribeTicketIssued(ctx, func(ctx context.Context, ticket *domain.Ticket) error {
		return notifyPassengers(ctx, notifier, ticket,
			fmt.Sprintf("Your booking %s is confirmed. Pay before %s to keep your seats.",
				ticket.ID, ticket.PaymentDeadline.Format("15:04")))
	})
	if err != nil {
		log.Fatalf("subscribe issued: %v", err)
	}

	err = sub.SubscribeTicketCancelled(ctx, func(ctx context.Context, ticket *domain.Ticket) error {
		return notifyPassengers(ctx, notifier, ticket,
			fmt.Sprintf("Booking %s was cancelled and its seats released.", ticket.ID))
	})
	if err != nil {
		log.Fatalf("subscribe cancelled: %v", err)
	}

	slog.Info("notifier started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("notifier stopped")
}

// notifyPassengers texts each passenger with a phone number on the ticket.
func notifyPassengers(ctx context.Context, n ports.NotificationService, ticket *domain.Ticket, message string) error {
	for _, p := range ticket.Passengers {
		if p.Phone == "" {
			continue
		}
		if err := n.SendSMS(ctx, p.Phone, message); err != nil {
			return err
		}
	}
	return nil
}
