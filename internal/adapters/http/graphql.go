package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	terminalType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Terminal",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"province": &graphql.Field{Type: graphql.String},
			"address":  &graphql.Field{Type: graphql.String},
		},
	})

	seatCellType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SeatCell",
		Fields: graphql.Fields{
			"kind":    &graphql.Field{Type: graphql.String},
			"seat_no": &graphql.Field{Type: graphql.String},
			"row":     &graphql.Field{Type: graphql.Int},
			"col":     &graphql.Field{Type: graphql.Int},
		},
	})

	layoutType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SeatLayout",
		Fields: graphql.Fields{
			"rows":  &graphql.Field{Type: graphql.Int},
			"cols":  &graphql.Field{Type: graphql.Int},
			"cells": &graphql.Field{Type: graphql.NewList(seatCellType)},
		},
	})

	busTypeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BusType",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"name":      &graphql.Field{Type: graphql.String},
			"amenities": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"layout":    &graphql.Field{Type: layoutType},
		},
	})

	stopType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TripStop",
		Fields: graphql.Fields{
			"terminal_id": &graphql.Field{Type: graphql.String},
			"terminal":    &graphql.Field{Type: terminalType},
			"time":        &graphql.Field{Type: graphql.String},
			"is_pickup":   &graphql.Field{Type: graphql.Boolean},
			"is_dropoff":  &graphql.Field{Type: graphql.Boolean},
			"sequence":    &graphql.Field{Type: graphql.Int},
		},
	})

	tripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trip",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"name":           &graphql.Field{Type: graphql.String},
			"is_active":      &graphql.Field{Type: graphql.Boolean},
			"frequency":      &graphql.Field{Type: graphql.String},
			"days":           &graphql.Field{Type: graphql.NewList(graphql.String)},
			"departure_time": &graphql.Field{Type: graphql.String},
			"price":          &graphql.Field{Type: graphql.Float},
			"bus_type":       &graphql.Field{Type: busTypeType},
			"stops":          &graphql.Field{Type: graphql.NewList(stopType)},
		},
	})

	availabilityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SeatAvailability",
		Fields: graphql.Fields{
			"trip_id":   &graphql.Field{Type: graphql.String},
			"capacity":  &graphql.Field{Type: graphql.Int},
			"taken":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"available": &graphql.Field{Type: graphql.Int},
		},
	})

	validationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ValidationResult",
		Fields: graphql.Fields{
			"ok":          &graphql.Field{Type: graphql.Boolean},
			"reason":      &graphql.Field{Type: graphql.String},
			"detail":      &graphql.Field{Type: graphql.String},
			"hours_until": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"terminals": &graphql.Field{
				Type:        graphql.NewList(terminalType),
				Description: "List all terminals",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Terminals.List(p.Context)
				},
			},
			"searchTerminals": &graphql.Field{
				Type:        graphql.NewList(terminalType),
				Description: "Search terminals by name or province",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Terminals.Search(p.Context, q, limit)
				},
			},
			"trips": &graphql.Field{
				Type:        graphql.NewList(tripType),
				Description: "List active trip schedules",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Trips.ListActive(p.Context)
				},
			},
			"trip": &graphql.Field{
				Type:        tripType,
				Description: "Get a trip schedule by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Trips.Resolve(p.Context, id)
				},
			},
			"busType": &graphql.Field{
				Type:        busTypeType,
				Description: "Get a bus type and its seat layout",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.BusTypes.GetByID(p.Context, id)
				},
			},
			"seatAvailability": &graphql.Field{
				Type:        availabilityType,
				Description: "Seat occupancy for a trip on a travel date",
				Args: graphql.FieldConfigArgument{
					"trip_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"date":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					tripID := p.Args["trip_id"].(string)
					date := p.Args["date"].(string)
					return deps.Tickets.Availability(p.Context, tripID, date)
				},
			},
			"validateBooking": &graphql.Field{
				Type:        validationType,
				Description: "Check whether a trip is bookable for a travel date",
				Args: graphql.FieldConfigArgument{
					"trip_id":              &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"travel_date":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"boarding_terminal_id": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req := domain.BookingRequest{
						TripID:     p.Args["trip_id"].(string),
						TravelDate: p.Args["travel_date"].(string),
						Requester:  domain.Actor{IsActive: true},
					}
					if b, ok := p.Args["boarding_terminal_id"].(string); ok {
						req.BoardingTerminalID = b
					}
					return deps.Validator.Validate(p.Context, req), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
