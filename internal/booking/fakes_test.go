package booking

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"space-reservation-backend/internal/calendar"
	"space-reservation-backend/internal/model"
)

var (
	testNow   = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	testToday = calendar.DateOf(testNow)
)

func tod(s string) calendar.TimeOfDay { return calendar.MustParseTimeOfDay(s) }

func fixedClock() time.Time { return testNow }

// memReservations is an in-memory ReservationRepository that enforces the
// same no-overlap rule the database does.
type memReservations struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]model.Reservation
	history []model.Status
	err     error
}

func newMemReservations(rows ...model.Reservation) *memReservations {
	m := &memReservations{rows: make(map[int64]model.Reservation)}
	for _, r := range rows {
		if r.ID == 0 {
			m.nextID++
			r.ID = m.nextID
		} else if r.ID > m.nextID {
			m.nextID = r.ID
		}
		m.rows[r.ID] = r
	}
	return m
}

func (m *memReservations) sorted(keep func(model.Reservation) bool) []model.Reservation {
	out := []model.Reservation{}
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].ReservationDate.Compare(out[j].ReservationDate); c != 0 {
			return c < 0
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memReservations) FindConflictingReservations(_ context.Context, spaceID int64, date calendar.Date, start, end calendar.TimeOfDay, excludeID *int64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(r model.Reservation) bool {
		if excludeID != nil && r.ID == *excludeID {
			return false
		}
		return r.IsActive() && r.SpaceID == spaceID && r.ReservationDate == date &&
			r.StartTime < end && start < r.EndTime
	}), nil
}

func (m *memReservations) FindBySpaceAndDateRange(_ context.Context, spaceID int64, from, to calendar.Date) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(r model.Reservation) bool {
		return r.SpaceID == spaceID && !r.ReservationDate.Before(from) && !r.ReservationDate.After(to)
	}), nil
}

func (m *memReservations) FindByDateRange(_ context.Context, from, to calendar.Date) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r model.Reservation) bool {
		return !r.ReservationDate.Before(from) && !r.ReservationDate.After(to)
	}), nil
}

func (m *memReservations) Save(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if res.IsActive() {
		for _, r := range m.rows {
			if r.ID != res.ID && r.IsActive() && r.SpaceID == res.SpaceID && r.ReservationDate == res.ReservationDate &&
				r.StartTime < res.EndTime && res.StartTime < r.EndTime {
				return ErrSlotUnavailable
			}
		}
	}
	if res.ID == 0 {
		m.nextID++
		res.ID = m.nextID
	}
	m.rows[res.ID] = *res
	m.history = append(m.history, res.Status)
	return nil
}

func (m *memReservations) FindByID(_ context.Context, id int64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memReservations) FindByUserID(_ context.Context, userID int64) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r model.Reservation) bool { return r.UserID == userID }), nil
}

func (m *memReservations) FindByStatus(_ context.Context, status model.Status) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r model.Reservation) bool { return r.Status == status }), nil
}

func (m *memReservations) FindByDate(_ context.Context, date calendar.Date) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r model.Reservation) bool { return r.ReservationDate == date }), nil
}

func (m *memReservations) activeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.IsActive() {
			n++
		}
	}
	return n
}

type memUsers struct {
	mu   sync.Mutex
	rows map[int64]model.User
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{rows: make(map[int64]model.User)}
	for _, u := range users {
		m.rows[u.ID] = u
	}
	return m
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Save(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		user.ID = int64(len(m.rows) + 1)
	}
	m.rows[user.ID] = *user
	return nil
}

type memSpaces struct {
	mu   sync.Mutex
	rows map[int64]model.Space
}

func newMemSpaces(spaces ...model.Space) *memSpaces {
	m := &memSpaces{rows: make(map[int64]model.Space)}
	for _, s := range spaces {
		m.rows[s.ID] = s
	}
	return m
}

func (m *memSpaces) FindByID(_ context.Context, id int64) (*model.Space, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSpaces) FindByName(_ context.Context, name string) (*model.Space, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if strings.EqualFold(s.Name, name) {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memSpaces) list(keep func(model.Space) bool) []model.Space {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Space{}
	for _, s := range m.rows {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memSpaces) FindAll(context.Context) ([]model.Space, error) {
	return m.list(func(model.Space) bool { return true }), nil
}

func (m *memSpaces) FindActive(context.Context) ([]model.Space, error) {
	return m.list(func(s model.Space) bool { return s.IsActive }), nil
}

func (m *memSpaces) FindByType(_ context.Context, typ model.SpaceType) ([]model.Space, error) {
	return m.list(func(s model.Space) bool { return s.Type == typ }), nil
}

func (m *memSpaces) Save(_ context.Context, space *model.Space) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if space.ID == 0 {
		space.ID = int64(len(m.rows) + 1)
	}
	m.rows[space.ID] = *space
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*model.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, notif *model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notif)
	return nil
}

func (n *recordingNotifier) all() []*model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*model.Notification(nil), n.sent...)
}

var (
	alice = model.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: model.RoleUser}
	bob   = model.User{ID: 2, Name: "Bob", Email: "bob@example.com", Role: model.RoleUser}
	admin = model.User{ID: 3, Name: "Root", Email: "root@example.com", Role: model.RoleAdmin}

	roomA  = model.Space{ID: 1, Name: "Room A", Type: model.SpaceTypeRoom, Capacity: 10, IsActive: true}
	roomB  = model.Space{ID: 2, Name: "Room B", Type: model.SpaceTypeRoom, Capacity: 12, IsActive: true}
	closed = model.Space{ID: 9, Name: "Old Court", Type: model.SpaceTypeCourt, Capacity: 4, IsActive: false}
)

func confirmedAt(id, spaceID int64, date calendar.Date, start, end string) model.Reservation {
	return model.Reservation{
		ID:              id,
		UserID:          alice.ID,
		SpaceID:         spaceID,
		ReservationDate: date,
		StartTime:       tod(start),
		EndTime:         tod(end),
		Status:          model.StatusConfirmed,
	}
}

func calendarZone(hours int) *time.Location {
	return time.FixedZone("test", hours*60*60)
}
