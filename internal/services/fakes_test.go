package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventticketing/internal/domain"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. WithTx
// takes a single mutex for the duration of the callback, which mirrors the
// per-event row-lock serialization the real repositories get from
// SELECT ... FOR UPDATE closely enough for concurrency tests.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	events  map[string]*domain.Event
	regs    map[string]*domain.Registration
	tickets map[string]*domain.Ticket
	nextID  int

	// error injection, popped in order
	createTicketErrs []error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:  make(map[string]*domain.Event),
		regs:    make(map[string]*domain.Registration),
		tickets: make(map[string]*domain.Ticket),
	}
}

func (s *fakeStore) withTx(_ context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(context.Background())
}

func (s *fakeStore) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) addEvent(ev *domain.Event) *domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = s.newID("ev")
	}
	cp := *ev
	s.events[ev.ID] = &cp
	return ev
}

func (s *fakeStore) activeCount(eventID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, reg := range s.regs {
		if reg.EventID == eventID && reg.Status == domain.RegistrationStatusActive {
			count++
		}
	}
	return count
}

func (s *fakeStore) registration(id string) *domain.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg, ok := s.regs[id]; ok {
		cp := *reg
		return &cp
	}
	return nil
}

func (s *fakeStore) ticketByCode(code string) *domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.TicketCode == code {
			cp := *t
			return &cp
		}
	}
	return nil
}

type fakeEventRepo struct {
	store *fakeStore
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	r.store.addEvent(event)
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ev, ok := r.store.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (r *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

type fakeRegRepo struct {
	store *fakeStore
}

func (r *fakeRegRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.withTx(ctx, fn)
}

func (r *fakeRegRepo) Create(_ context.Context, reg *domain.Registration) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	reg.ID = r.store.newID("reg")
	cp := *reg
	r.store.regs[reg.ID] = &cp
	return nil
}

func (r *fakeRegRepo) GetByID(_ context.Context, id string) (*domain.Registration, error) {
	if reg := r.store.registration(id); reg != nil {
		return reg, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRegRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Registration, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRegRepo) GetByEventAndUser(_ context.Context, eventID, userID string) (*domain.Registration, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, reg := range r.store.regs {
		if reg.EventID == eventID && reg.UserID == userID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRegRepo) CountActive(_ context.Context, eventID string) (int, error) {
	return r.store.activeCount(eventID), nil
}

func (r *fakeRegRepo) UpdateStatus(_ context.Context, id string, status domain.RegistrationStatus, cancelledAt *time.Time, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	reg, ok := r.store.regs[id]
	if !ok {
		return domain.ErrNotFound
	}
	reg.Status = status
	reg.CancelledAt = cancelledAt
	reg.UpdatedAt = now
	return nil
}

type fakeTicketRepo struct {
	store *fakeStore
}

func (r *fakeTicketRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.withTx(ctx, fn)
}

func (r *fakeTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if len(r.store.createTicketErrs) > 0 {
		err := r.store.createTicketErrs[0]
		r.store.createTicketErrs = r.store.createTicketErrs[1:]
		if err != nil {
			return err
		}
	}
	for _, existing := range r.store.tickets {
		if existing.TicketCode == t.TicketCode {
			return domain.ErrDuplicateTicketCode
		}
	}
	t.ID = r.store.newID("tk")
	cp := *t
	r.store.tickets[t.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	if t := r.store.ticketByCode(code); t != nil {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTicketRepo) GetByCodeForUpdate(ctx context.Context, code string) (*domain.Ticket, error) {
	return r.GetByCode(ctx, code)
}

func (r *fakeTicketRepo) GetValidByRegistration(_ context.Context, registrationID string) (*domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.tickets {
		if t.RegistrationID == registrationID && t.Status == domain.TicketStatusValid {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTicketRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	return r.store.ticketByCode(code) != nil, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, usedAt *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tickets[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	t.UsedAt = usedAt
	return nil
}

// fakeEmailService records sent emails and signals on a channel so tests can
// wait for the detached send.
type fakeEmailService struct {
	mu        sync.Mutex
	confirmed []*domain.RegistrationEmailData
	cancelled []*domain.RegistrationEmailData
	sent      chan struct{}
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{sent: make(chan struct{}, 16)}
}

func (f *fakeEmailService) SendRegistrationConfirmed(_ context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	f.confirmed = append(f.confirmed, data)
	f.mu.Unlock()
	f.sent <- struct{}{}
	return nil
}

func (f *fakeEmailService) SendRegistrationCancelled(_ context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	f.cancelled = append(f.cancelled, data)
	f.mu.Unlock()
	f.sent <- struct{}{}
	return nil
}
