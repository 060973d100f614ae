package http

import (
	"github.com/nats-io/nats.go"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/postgres"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/valkey"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Terminals *usecases.TerminalService
	Trips     *usecases.ScheduleService
	BusTypes  *usecases.BusTypeService
	Tickets   *usecases.TicketService
	Validator *usecases.BookingValidator
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
