package booking

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/metinatakli/movie-booking-service/internal/domain"
)

// memStore is an in-memory InventoryStore. Transactions run one at a time
// against a private copy of the state that replaces the shared state on commit.
type memStore struct {
	mu       sync.Mutex
	shows    map[int]domain.Show
	bookings map[int]domain.Booking
	payments map[string]domain.PaymentStatus
	nextID   int
	now      func() time.Time

	faults  []txFault
	txCount int
}

// txFault replaces the outcome of one transaction. With apply set, the
// writes are committed before err is returned.
type txFault struct {
	err   error
	apply bool
}

func newMemStore(now func() time.Time, shows ...domain.Show) *memStore {
	m := &memStore{
		shows:    make(map[int]domain.Show),
		bookings: make(map[int]domain.Booking),
		payments: make(map[string]domain.PaymentStatus),
		nextID:   1,
		now:      now,
	}

	for _, s := range shows {
		if s.Version == 0 {
			s.Version = 1
		}
		m.shows[s.ID] = s
	}

	return m
}

func (m *memStore) injectFaults(faults ...txFault) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.faults = append(m.faults, faults...)
}

func (m *memStore) show(id int) domain.Show {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.shows[id]
}

func (m *memStore) allBookings() []domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := slices.Collect(maps.Values(m.bookings))
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (m *memStore) transactions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.txCount
}

func (m *memStore) RunInTx(ctx context.Context, fn func(tx domain.InventoryTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txCount++

	tx := &memTx{
		store:    m,
		shows:    maps.Clone(m.shows),
		bookings: maps.Clone(m.bookings),
		payments: maps.Clone(m.payments),
		nextID:   m.nextID,
	}

	err := fn(tx)
	if err != nil {
		return err
	}

	var fault *txFault
	if len(m.faults) > 0 {
		fault = &m.faults[0]
		m.faults = m.faults[1:]
	}

	if fault != nil && !fault.apply {
		return fault.err
	}

	m.shows = tx.shows
	m.bookings = tx.bookings
	m.payments = tx.payments
	m.nextID = tx.nextID

	if fault != nil {
		return fault.err
	}

	return nil
}

func (m *memStore) FindBookingByID(ctx context.Context, id int) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return lookupBooking(m.bookings, id)
}

func (m *memStore) FindBookingByRequestID(ctx context.Context, userID int, requestID string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookings {
		if b.UserID == userID && b.RequestID == requestID {
			return cloneBooking(b), nil
		}
	}

	return nil, domain.ErrRecordNotFound
}

func (m *memStore) FindActiveBookings(ctx context.Context, showID int) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return activeBookings(m.bookings, showID), nil
}

func (m *memStore) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, *domain.Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.Booking
	for _, b := range m.bookings {
		if filter.UserID == nil || b.UserID == *filter.UserID {
			matched = append(matched, *cloneBooking(b))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := min(filter.Pagination.Offset(), total)
	end := min(start+filter.Pagination.Limit(), total)

	return matched[start:end], domain.NewMetadata(total, filter.Pagination.Page, filter.Pagination.PageSize), nil
}

func (m *memStore) FindStalePendingBookings(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stale []domain.Booking
	for _, b := range m.bookings {
		if b.Status == domain.BookingStatusCreated && b.CreatedAt.Before(createdBefore) {
			stale = append(stale, *cloneBooking(b))
		}
	}

	sort.Slice(stale, func(i, j int) bool { return stale[i].ID < stale[j].ID })
	if len(stale) > limit {
		stale = stale[:limit]
	}

	return stale, nil
}

type memTx struct {
	store    *memStore
	shows    map[int]domain.Show
	bookings map[int]domain.Booking
	payments map[string]domain.PaymentStatus
	nextID   int
}

func (t *memTx) GetShowForUpdate(ctx context.Context, id int) (*domain.Show, error) {
	s, ok := t.shows[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return &s, nil
}

func (t *memTx) SaveShow(ctx context.Context, show *domain.Show) error {
	current, ok := t.shows[show.ID]
	if !ok || current.Version != show.Version {
		return domain.ErrEditConflict
	}

	if show.AvailableSeats < 0 || show.AvailableSeats > show.TotalSeats {
		return domain.ErrCapacityExceeded
	}

	show.Version++
	t.shows[show.ID] = *show

	return nil
}

func (t *memTx) FindActiveBookings(ctx context.Context, showID int) ([]domain.Booking, error) {
	return activeBookings(t.bookings, showID), nil
}

func (t *memTx) CreateBooking(ctx context.Context, b *domain.Booking) error {
	for _, existing := range t.bookings {
		if existing.UserID == b.UserID && existing.RequestID == b.RequestID {
			return domain.ErrDuplicateRequest
		}
	}

	b.ID = t.nextID
	t.nextID++
	b.CreatedAt = t.store.now()
	b.UpdatedAt = b.CreatedAt
	t.bookings[b.ID] = *cloneBooking(*b)

	return nil
}

func (t *memTx) FindBookingByID(ctx context.Context, id int) (*domain.Booking, error) {
	return lookupBooking(t.bookings, id)
}

func (t *memTx) FindBookingByIDForUpdate(ctx context.Context, id int) (*domain.Booking, error) {
	return lookupBooking(t.bookings, id)
}

func (t *memTx) SaveBooking(ctx context.Context, b *domain.Booking) error {
	if _, ok := t.bookings[b.ID]; !ok {
		return domain.ErrRecordNotFound
	}

	t.bookings[b.ID] = *cloneBooking(*b)

	return nil
}

func (t *memTx) SetPaymentStatus(ctx context.Context, checkoutSessionID string, status domain.PaymentStatus, errMsg string) error {
	t.payments[checkoutSessionID] = status
	return nil
}

func lookupBooking(bookings map[int]domain.Booking, id int) (*domain.Booking, error) {
	b, ok := bookings[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	return cloneBooking(b), nil
}

func activeBookings(bookings map[int]domain.Booking, showID int) []domain.Booking {
	var active []domain.Booking
	for _, b := range bookings {
		if b.ShowID == showID && b.Status.IsActive() {
			active = append(active, *cloneBooking(b))
		}
	}

	return active
}

func cloneBooking(b domain.Booking) *domain.Booking {
	b.Seats = slices.Clone(b.Seats)
	return &b
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []domain.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]domain.BookingEventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}

	return types
}
