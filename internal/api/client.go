// Package api is the typed client for the incubator admin backend.
//
// Every call goes through the resilient executor (incuhub/pkg/retry), so
// transient backend failures are retried with exponential backoff before a
// caller ever sees them. Mutation payloads are validated locally before any
// network I/O; validation failures surface as the same 400-shaped errors the
// backend produces, so callers classify both with incuhub/pkg/apierr.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"incuhub/internal/platform/httpclient"
	"incuhub/pkg/apierr"
	"incuhub/pkg/retry"
)

var validate = validator.New()

// Client bundles the admin API resource services.
type Client struct {
	http  *httpclient.Client
	base  string
	retry retry.Config
	log   *slog.Logger

	Users       *UsersService
	Mentors     *MentorsService
	Teams       *TeamsService
	Projects    *ProjectsService
	Stock       *StockService
	Consumables *ConsumablesService
	Locations   *LocationsService
	Suppliers   *SuppliersService
	Messages    *MessagesService
	Health      *HealthService
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets the underlying transport.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for retry feedback.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRetryConfig overrides the executor configuration applied to every call.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:  strings.TrimRight(baseURL, "/"),
		retry: retry.DefaultConfig(),
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = httpclient.New(httpclient.WithLogger(c.log))
	}
	if c.retry.OnRetry == nil {
		log := c.log
		c.retry.OnRetry = func(attempt int, delay time.Duration, err error) {
			log.Warn("retrying request",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.Any("error", err))
		}
	}

	c.Users = &UsersService{resource: resource[User]{c: c, path: "/api/users"}}
	c.Mentors = &MentorsService{resource: resource[Mentor]{c: c, path: "/api/mentors"}}
	c.Teams = &TeamsService{resource: resource[Team]{c: c, path: "/api/teams"}}
	c.Projects = &ProjectsService{resource: resource[Project]{c: c, path: "/api/projects"}}
	c.Stock = &StockService{resource: resource[StockItem]{c: c, path: "/api/stock"}}
	c.Consumables = &ConsumablesService{resource: resource[Consumable]{c: c, path: "/api/consumables"}}
	c.Locations = &LocationsService{resource: resource[Location]{c: c, path: "/api/locations"}}
	c.Suppliers = &SuppliersService{resource: resource[Supplier]{c: c, path: "/api/suppliers"}}
	c.Messages = &MessagesService{resource: resource[Message]{c: c, path: "/api/messages"}}
	c.Health = &HealthService{c: c}
	return c
}

// checkPayload validates in before it leaves the process, converting
// validator failures into the same 400 shape the backend produces.
func checkPayload(in any) error {
	if in == nil {
		return nil
	}
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	e := &apierr.Error{Status: http.StatusBadRequest, Message: "validation failed"}
	for _, fe := range verrs {
		e.Fields = append(e.Fields, apierr.FieldError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
		})
	}
	return e
}

// doJSON runs one retry-wrapped JSON exchange against path.
func doJSON[T any](ctx context.Context, c *Client, method, path string, in any) (T, error) {
	var zero T
	if method != http.MethodGet && method != http.MethodDelete {
		if err := checkPayload(in); err != nil {
			return zero, err
		}
	}
	return retry.Do(ctx, c.retry, func(ctx context.Context) (T, error) {
		var out T
		err := c.http.DoJSON(ctx, method, c.base+path, in, &out)
		return out, err
	})
}

// doNoBody is doJSON for calls whose response body is discarded.
func doNoBody(ctx context.Context, c *Client, method, path string) error {
	_, err := retry.Do(ctx, c.retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.http.DoJSON(ctx, method, c.base+path, nil, nil)
	})
	return err
}

// resource implements the CRUD operations shared by every admin collection.
type resource[T any] struct {
	c    *Client
	path string
}

// List fetches the whole collection.
func (r resource[T]) List(ctx context.Context) ([]T, error) {
	return doJSON[[]T](ctx, r.c, http.MethodGet, r.path, nil)
}

// Get fetches a single item by id.
func (r resource[T]) Get(ctx context.Context, id int64) (T, error) {
	return doJSON[T](ctx, r.c, http.MethodGet, fmt.Sprintf("%s/%d", r.path, id), nil)
}

// Create stores a new item and returns it with its assigned id.
func (r resource[T]) Create(ctx context.Context, item T) (T, error) {
	return doJSON[T](ctx, r.c, http.MethodPost, r.path, item)
}

// Update replaces the item with the given id.
func (r resource[T]) Update(ctx context.Context, id int64, item T) (T, error) {
	return doJSON[T](ctx, r.c, http.MethodPut, fmt.Sprintf("%s/%d", r.path, id), item)
}

// Delete removes the item with the given id.
func (r resource[T]) Delete(ctx context.Context, id int64) error {
	return doNoBody(ctx, r.c, http.MethodDelete, fmt.Sprintf("%s/%d", r.path, id))
}
