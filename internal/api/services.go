package api

import (
	"context"
	"fmt"
	"net/http"
)

// UsersService manages program members.
type UsersService struct{ resource[User] }

// MentorsService manages mentors.
type MentorsService struct{ resource[Mentor] }

// TeamsService manages teams.
type TeamsService struct{ resource[Team] }

// Members lists the users assigned to a team.
func (s *TeamsService) Members(ctx context.Context, teamID int64) ([]User, error) {
	return doJSON[[]User](ctx, s.c, http.MethodGet, fmt.Sprintf("%s/%d/members", s.path, teamID), nil)
}

// ProjectsService manages incubated projects.
type ProjectsService struct{ resource[Project] }

// StockService manages durable inventory.
type StockService struct{ resource[StockItem] }

// Adjust changes an item's quantity by delta (negative to remove stock).
func (s *StockService) Adjust(ctx context.Context, id int64, delta int) (StockItem, error) {
	return doJSON[StockItem](ctx, s.c, http.MethodPost,
		fmt.Sprintf("%s/%d/adjust", s.path, id), quantityDelta{Delta: float64(delta)})
}

// ConsumablesService manages depletable supplies.
type ConsumablesService struct{ resource[Consumable] }

// Consume reduces the remaining amount by quantity.
func (s *ConsumablesService) Consume(ctx context.Context, id int64, quantity float64) (Consumable, error) {
	return doJSON[Consumable](ctx, s.c, http.MethodPost,
		fmt.Sprintf("%s/%d/consume", s.path, id), quantityDelta{Delta: -quantity})
}

// LocationsService manages physical locations.
type LocationsService struct{ resource[Location] }

// SuppliersService manages suppliers.
type SuppliersService struct{ resource[Supplier] }

// MessagesService manages internal messages.
type MessagesService struct{ resource[Message] }

// Send delivers a new message.
func (s *MessagesService) Send(ctx context.Context, m Message) (Message, error) {
	return s.Create(ctx, m)
}

// HealthService reports backend liveness.
type HealthService struct{ c *Client }

// Ping fetches the backend health status.
func (s *HealthService) Ping(ctx context.Context) (HealthStatus, error) {
	return doJSON[HealthStatus](ctx, s.c, http.MethodGet, "/api/health", nil)
}
