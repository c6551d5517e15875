package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/entity"
	customerrepo "github.com/stickspnw/sticks-work-center/internal/repository/customer"
	auditsvc "github.com/stickspnw/sticks-work-center/internal/service/audit"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
	"github.com/stickspnw/sticks-work-center/pkg/initials"
)

// Store is the persistence surface the service needs.
type Store interface {
	List(ctx context.Context, q string) ([]*entity.Customer, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.Customer, error)
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	Create(ctx context.Context, customer *entity.Customer) error
	Update(ctx context.Context, customer *entity.Customer) error
	Archive(ctx context.Context, id string) error
}

// Service owns customer directory operations.
type Service struct {
	store  Store
	audit  *auditsvc.Service
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Customers *customerrepo.Repository
	Audit     *auditsvc.Service
	Logger    *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{store: p.Customers, audit: p.Audit, logger: p.Logger}
}

// Input carries the writable customer fields.
type Input struct {
	Name            string
	Phone           string
	Email           string
	ShippingAddress string
}

func (in *Input) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	if len(in.Name) < 2 {
		return errorbank.BadRequest("name must be at least 2 characters")
	}
	if len(in.ShippingAddress) < 3 {
		return errorbank.BadRequest("shippingAddress must be at least 3 characters")
	}
	if in.Phone == "" && in.Email == "" {
		return errorbank.BadRequest("phone or email is required")
	}
	return nil
}

// List returns active customers, optionally filtered by a name/phone/email
// substring.
func (s *Service) List(ctx context.Context, q string) ([]*entity.Customer, error) {
	customers, err := s.store.List(ctx, strings.TrimSpace(q))
	if err != nil {
		return nil, errorbank.Internal("failed to list customers", errorbank.WithCause(err))
	}
	return customers, nil
}

// Search matches active customers for the global search box.
func (s *Service) Search(ctx context.Context, q string, limit int) ([]*entity.Customer, error) {
	customers, err := s.store.Search(ctx, q, limit)
	if err != nil {
		return nil, errorbank.Internal("customer search failed", errorbank.WithCause(err))
	}
	return customers, nil
}

// Get retrieves one customer, archived or not.
func (s *Service) Get(ctx context.Context, id string) (*entity.Customer, error) {
	customer, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, customerrepo.ErrNotFound) {
			return nil, errorbank.NotFound("customer not found")
		}
		return nil, errorbank.Internal("failed to load customer", errorbank.WithCause(err))
	}
	return customer, nil
}

// Create adds a customer to the directory.
func (s *Service) Create(ctx context.Context, in Input) (*entity.Customer, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	customer := &entity.Customer{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Phone:           in.Phone,
		Email:           in.Email,
		ShippingAddress: in.ShippingAddress,
		DateAdded:       time.Now().UTC(),
	}
	if err := s.store.Create(ctx, customer); err != nil {
		return nil, errorbank.Internal("failed to create customer", errorbank.WithCause(err))
	}
	return customer, nil
}

// Update edits the customer record. Existing orders keep their snapshots and
// are unaffected.
func (s *Service) Update(ctx context.Context, id string, in Input) (*entity.Customer, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Name = in.Name
	customer.Phone = in.Phone
	customer.Email = in.Email
	customer.ShippingAddress = in.ShippingAddress
	if err := s.store.Update(ctx, customer); err != nil {
		return nil, errorbank.Internal("failed to update customer", errorbank.WithCause(err))
	}
	return customer, nil
}

// Archive hides a customer from listings and pickers. Orders that reference
// the customer keep working off their snapshots.
func (s *Service) Archive(ctx context.Context, id, rawInitials, actorID string) error {
	code, ok := initials.Normalize(rawInitials)
	if !ok {
		return errorbank.BadRequest("initials must be 2-3 letters")
	}
	customer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if customer.IsArchived {
		return errorbank.Conflict("customer is already archived")
	}
	if err := s.store.Archive(ctx, id); err != nil {
		return errorbank.Internal("failed to archive customer", errorbank.WithCause(err))
	}
	if s.audit != nil {
		s.audit.Record(ctx, auditsvc.Entry{
			ActorID:  actorID,
			Initials: code,
			Action:   entity.AuditCustomerArchived,
			Details:  map[string]any{"customerId": id, "name": customer.Name},
		})
	}
	s.logger.Info("customer archived", zap.String("customer_id", id))
	return nil
}
