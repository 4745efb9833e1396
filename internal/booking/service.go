package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

// BookRequest is a booking as submitted by a user.
type BookRequest struct {
	UserID  int64
	SpaceID int64
	Date    calendar.Date
	Start   calendar.TimeOfDay
	End     calendar.TimeOfDay
	Purpose string
}

// Service runs the reservation workflow: validate, serialize per space and
// day, persist as pending, confirm, then notify.
type Service struct {
	reservations ReservationRepository
	users        UserFinder
	spaces       SpaceFinder
	conflicts    *ConflictDetector
	validator    *Validator
	slots        *SlotGenerator
	builder      *NotificationBuilder
	notifier     Notifier
	policy       Policy
	locks        *keyLock
	now          func() time.Time
}

// NewService wires the engine. notifier may be nil.
func NewService(reservations ReservationRepository, users UserFinder, spaces SpaceFinder, notifier Notifier, builder *NotificationBuilder, policy Policy) *Service {
	conflicts := NewConflictDetector(reservations)
	if builder == nil {
		builder = NewNotificationBuilder(model.NotificationEmail)
	}
	return &Service{
		reservations: reservations,
		users:        users,
		spaces:       spaces,
		conflicts:    conflicts,
		validator:    NewValidator(users, spaces, conflicts, policy),
		slots:        NewSlotGenerator(reservations, policy),
		builder:      builder,
		notifier:     notifier,
		policy:       policy,
		locks:        newKeyLock(),
		now:          time.Now,
	}
}

// WithClock replaces the time source, for tests. The service keeps its own
// copy of the notification builder so the caller's builder is left as is.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	builder := *s.builder
	builder.Now = now
	s.builder = &builder
	return s
}

func (s *Service) Policy() Policy { return s.policy }

// Book validates and stores a reservation. It returns a *ValidationError
// listing every violated rule, or ErrSlotUnavailable when a concurrent
// booking won the slot after validation passed.
func (s *Service) Book(ctx context.Context, req BookRequest) (*model.Reservation, error) {
	now := s.now()
	candidate := Request{
		UserID:  req.UserID,
		SpaceID: req.SpaceID,
		Date:    req.Date,
		Start:   req.Start,
		End:     req.End,
	}
	violations, err := s.validator.Validate(ctx, candidate, now)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, newValidationError(violations...)
	}

	unlock, err := s.locks.Lock(ctx, req.SpaceID, req.Date)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Another request may have committed between validation and the lock.
	conflict, err := s.conflicts.HasConflict(ctx, req.SpaceID, req.Date, req.Start, req.End, nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotUnavailable
	}

	res, err := model.NewReservation(req.UserID, req.SpaceID, req.Date, req.Start, req.End, req.Purpose, now.UTC())
	if err != nil {
		return nil, err
	}

	// Pending and confirmed are written separately so the pending row is
	// observable before confirmation.
	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to store pending reservation: %w", err)
	}
	res.Confirm()
	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to confirm reservation %d: %w", res.ID, err)
	}

	log.Printf("Reservation %d confirmed: space %d on %s %s-%s for user %d",
		res.ID, res.SpaceID, res.ReservationDate, res.StartTime, res.EndTime, res.UserID)
	s.notify(ctx, res, s.builder.Confirmed)
	return res, nil
}

// Cancel cancels a reservation on behalf of actorID. Cancelling an already
// cancelled reservation returns it unchanged.
func (s *Service) Cancel(ctx context.Context, reservationID, actorID int64) (*model.Reservation, error) {
	res, err := s.authorize(ctx, reservationID, actorID)
	if err != nil {
		return nil, err
	}
	if res.Status == model.StatusCancelled {
		return res, nil
	}
	if !s.policy.CanBeCancelled(res, s.now()) {
		return nil, newValidationError(fmt.Sprintf(
			"reservation can no longer be cancelled; cancellations require at least %s notice",
			formatDuration(s.policy.CancellationLead)))
	}

	res.Cancel()
	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to cancel reservation %d: %w", res.ID, err)
	}
	log.Printf("Reservation %d cancelled by user %d", res.ID, actorID)
	s.notify(ctx, res, s.builder.Cancelled)
	return res, nil
}

// Reschedule moves a reservation to a new day and interval. The move is
// validated like a new booking, ignoring the reservation's own slot.
func (s *Service) Reschedule(ctx context.Context, reservationID, actorID int64, date calendar.Date, start, end calendar.TimeOfDay) (*model.Reservation, error) {
	res, err := s.authorize(ctx, reservationID, actorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !s.policy.CanBeModified(res, now) {
		return nil, newValidationError(fmt.Sprintf(
			"reservation can no longer be modified; changes require at least %s notice",
			formatDuration(s.policy.CancellationLead)))
	}

	candidate := Request{
		UserID:               res.UserID,
		SpaceID:              res.SpaceID,
		Date:                 date,
		Start:                start,
		End:                  end,
		ExcludeReservationID: &res.ID,
	}
	violations, err := s.validator.Validate(ctx, candidate, now)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, newValidationError(violations...)
	}

	unlock, err := s.locks.Lock(ctx, res.SpaceID, date)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := res.Reschedule(date, start, end); err != nil {
		return nil, err
	}
	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to reschedule reservation %d: %w", res.ID, err)
	}
	log.Printf("Reservation %d moved to %s %s-%s", res.ID, date, start, end)
	s.notify(ctx, res, s.builder.Rescheduled)
	return res, nil
}

// authorize loads the reservation and checks that actorID owns it or is an
// admin.
func (s *Service) authorize(ctx context.Context, reservationID, actorID int64) (*model.Reservation, error) {
	res, err := s.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", actorID, err)
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}
	if res.UserID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return res, nil
}

// Get returns ErrReservationNotFound for an unknown ID.
func (s *Service) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation %d: %w", id, err)
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}
	return res, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.reservations.FindByUserID(ctx, userID)
}

func (s *Service) ListByDate(ctx context.Context, date calendar.Date) ([]model.Reservation, error) {
	return s.reservations.FindByDate(ctx, date)
}

func (s *Service) ListByStatus(ctx context.Context, status model.Status) ([]model.Reservation, error) {
	return s.reservations.FindByStatus(ctx, status)
}

// Slots returns the business-hour slots of a space on date, marked free or
// occupied. When onlyAvailable is set occupied slots are left out.
func (s *Service) Slots(ctx context.Context, spaceID int64, date calendar.Date, onlyAvailable bool) ([]Slot, error) {
	space, err := s.spaces.FindByID(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load space %d: %w", spaceID, err)
	}
	if space == nil {
		return nil, ErrSpaceNotFound
	}

	gen := s.slots.Slots
	if onlyAvailable {
		gen = s.slots.AvailableSlots
	}
	seq, err := gen(ctx, spaceID, date)
	if err != nil {
		return nil, err
	}
	slots := []Slot{}
	for slot := range seq {
		slots = append(slots, slot)
	}
	return slots, nil
}

// Stats aggregates the reservations with from <= date <= to.
func (s *Service) Stats(ctx context.Context, from, to calendar.Date) (Stats, error) {
	if to.Before(from) {
		return Stats{}, newValidationError("period end must not be before period start")
	}
	reservations, err := s.reservations.FindByDateRange(ctx, from, to)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load reservations for %s..%s: %w", from, to, err)
	}
	return Aggregate(reservations, from, to), nil
}

// SendReminders queues a reminder for every confirmed reservation on date
// and returns how many were queued.
func (s *Service) SendReminders(ctx context.Context, date calendar.Date) (int, error) {
	reservations, err := s.reservations.FindByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to load reservations for %s: %w", date, err)
	}
	sent := 0
	for i := range reservations {
		res := &reservations[i]
		if res.Status != model.StatusConfirmed {
			continue
		}
		if s.notify(ctx, res, s.builder.Reminder) {
			sent++
		}
	}
	return sent, nil
}

// notify builds and hands off a notification. Failures are logged; the
// reservation change has already been committed.
func (s *Service) notify(ctx context.Context, res *model.Reservation, build func(*model.Reservation, string) *model.Notification) bool {
	if s.notifier == nil {
		return false
	}
	spaceName := fmt.Sprintf("space %d", res.SpaceID)
	if space, err := s.spaces.FindByID(ctx, res.SpaceID); err != nil {
		log.Printf("Warning: could not load space %d for notification: %v", res.SpaceID, err)
	} else if space != nil {
		spaceName = space.Name
	}

	if err := s.notifier.Notify(ctx, build(res, spaceName)); err != nil {
		log.Printf("Error queuing notification for reservation %d: %v", res.ID, err)
		return false
	}
	return true
}

// IsRetryable reports whether err means the slot was taken concurrently.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSlotUnavailable)
}
