package booking

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

// SpaceRepository stores the space catalogue.
type SpaceRepository interface {
	SpaceFinder
	// FindByName matches case-insensitively; nil, nil when absent.
	FindByName(ctx context.Context, name string) (*model.Space, error)
	FindAll(ctx context.Context) ([]model.Space, error)
	FindActive(ctx context.Context) ([]model.Space, error)
	FindByType(ctx context.Context, typ model.SpaceType) ([]model.Space, error)
	Save(ctx context.Context, space *model.Space) error
}

// SpaceInput is a new catalogue entry.
type SpaceInput struct {
	Name        string
	Type        string
	Capacity    int
	Description string
}

// Criteria filters active spaces. Zero values disable a filter.
type Criteria struct {
	Type        string
	MinCapacity int
	MaxCapacity int
}

// similarCapacityRatio bounds how far a similar space's capacity may be
// from the reference space.
const similarCapacityRatio = 0.2

// SpaceService manages the catalogue of bookable spaces.
type SpaceService struct {
	spaces       SpaceRepository
	users        UserFinder
	reservations ReservationRepository
	types        model.SpaceTypeSet
	policy       Policy
	now          func() time.Time
}

func NewSpaceService(spaces SpaceRepository, users UserFinder, reservations ReservationRepository, types model.SpaceTypeSet, policy Policy) *SpaceService {
	return &SpaceService{
		spaces:       spaces,
		users:        users,
		reservations: reservations,
		types:        types,
		policy:       policy,
		now:          time.Now,
	}
}

// Create adds a space. Only admins may manage the catalogue.
func (s *SpaceService) Create(ctx context.Context, actorID int64, in SpaceInput) (*model.Space, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	var violations []string
	name := strings.TrimSpace(in.Name)
	if name == "" {
		violations = append(violations, "space name is required")
	} else {
		existing, err := s.spaces.FindByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check space name: %w", err)
		}
		if existing != nil {
			violations = append(violations, fmt.Sprintf("a space named %q already exists", name))
		}
	}
	typ, err := s.types.Parse(in.Type)
	if err != nil {
		violations = append(violations, err.Error())
	}
	if in.Capacity <= 0 {
		violations = append(violations, "capacity must be a positive number")
	}
	if len(violations) > 0 {
		return nil, newValidationError(violations...)
	}

	space := model.NewSpace(name, typ, in.Capacity, in.Description, s.now().UTC())
	if err := s.spaces.Save(ctx, space); err != nil {
		if isDuplicate(err) {
			return nil, newValidationError(fmt.Sprintf("a space named %q already exists", name))
		}
		return nil, fmt.Errorf("failed to save space: %w", err)
	}
	return space, nil
}

// SetActive activates or deactivates a space.
func (s *SpaceService) SetActive(ctx context.Context, actorID, spaceID int64, active bool) (*model.Space, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	space, err := s.Get(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if active {
		space.Activate()
	} else {
		space.Deactivate()
	}
	if err := s.spaces.Save(ctx, space); err != nil {
		return nil, fmt.Errorf("failed to update space %d: %w", spaceID, err)
	}
	return space, nil
}

func (s *SpaceService) Get(ctx context.Context, id int64) (*model.Space, error) {
	space, err := s.spaces.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load space %d: %w", id, err)
	}
	if space == nil {
		return nil, ErrSpaceNotFound
	}
	return space, nil
}

// Search returns the active spaces matching c.
func (s *SpaceService) Search(ctx context.Context, c Criteria) ([]model.Space, error) {
	var typ model.SpaceType
	if c.Type != "" {
		t, err := s.types.Parse(c.Type)
		if err != nil {
			return nil, newValidationError(err.Error())
		}
		typ = t
	}

	active, err := s.spaces.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Space, 0, len(active))
	for _, sp := range active {
		if typ != "" && sp.Type != typ {
			continue
		}
		if c.MinCapacity > 0 && sp.Capacity < c.MinCapacity {
			continue
		}
		if c.MaxCapacity > 0 && sp.Capacity > c.MaxCapacity {
			continue
		}
		out = append(out, sp)
	}
	return out, nil
}

// Similar returns the other active spaces of the same type whose capacity is
// within 20% of the reference space.
func (s *SpaceService) Similar(ctx context.Context, id int64) ([]model.Space, error) {
	ref, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	candidates, err := s.spaces.FindByType(ctx, ref.Type)
	if err != nil {
		return nil, err
	}
	maxDiff := float64(ref.Capacity) * similarCapacityRatio
	out := []model.Space{}
	for _, sp := range candidates {
		if sp.ID == ref.ID || !sp.IsActive {
			continue
		}
		if math.Abs(float64(sp.Capacity-ref.Capacity)) <= maxDiff {
			out = append(out, sp)
		}
	}
	return out, nil
}

// OccupancyRate is the percentage of business hours between from and to
// (inclusive) covered by non-cancelled reservations of the space.
func (s *SpaceService) OccupancyRate(ctx context.Context, id int64, from, to calendar.Date) (float64, error) {
	if to.Before(from) {
		return 0, newValidationError("period end must not be before period start")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}
	reservations, err := s.reservations.FindBySpaceAndDateRange(ctx, id, from, to)
	if err != nil {
		return 0, err
	}
	return occupancyRate(reservations, from.DaysUntil(to)+1, s.policy.BusinessEnd.Sub(s.policy.BusinessStart)), nil
}

func occupancyRate(reservations []model.Reservation, days int, openPerDay time.Duration) float64 {
	available := float64(days) * openPerDay.Hours()
	if available <= 0 {
		return 0
	}
	var reserved float64
	for i := range reservations {
		if reservations[i].Status != model.StatusCancelled {
			reserved += reservations[i].Interval().Hours()
		}
	}
	return reserved / available * 100
}

func (s *SpaceService) requireAdmin(ctx context.Context, actorID int64) error {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to load user %d: %w", actorID, err)
	}
	if actor == nil {
		return ErrUserNotFound
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
