// Package session implements the create/edit state machine for a single
// employee record.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/logger"
)

type State int

const (
	StateClosed State = iota
	StateCreating
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "creating"
	case StateEditing:
		return "editing"
	default:
		return "closed"
	}
}

// SavedEvent is passed to the OnSaved hook after a successful submit.
type SavedEvent struct {
	KeepOpen bool
	Employee domain.Employee
}

type Options struct {
	Clock    clockwork.Clock
	Notifier domain.Notifier
	// OnSaved is typically wired to the collection controller's Refresh.
	OnSaved func(ctx context.Context, ev SavedEvent)
}

// Session holds the form of one record being created or edited.
type Session struct {
	gw        domain.EmployeeGateway
	notifier  domain.Notifier
	onSaved   func(ctx context.Context, ev SavedEvent)
	validator *FormValidator

	mu     sync.Mutex
	state  State
	record *domain.Employee
	form   FormValues
	// epoch changes on every open and close; a submit that completes in a
	// different epoch no longer owns the session.
	epoch uint64
}

func New(gw domain.EmployeeGateway, opts Options) *Session {
	if opts.Notifier == nil {
		opts.Notifier = domain.NotifierFunc(func(context.Context, domain.Notification) {})
	}
	return &Session{
		gw:        gw,
		notifier:  opts.Notifier,
		onSaved:   opts.OnSaved,
		validator: NewFormValidator(opts.Clock),
	}
}

// Open starts creating (e == nil) or editing e. Archived records cannot be
// opened.
func (s *Session) Open(e *domain.Employee) error {
	if e != nil && e.IsArchived() {
		return domain.ErrArchivedReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	if e == nil {
		s.state = StateCreating
		s.record = nil
		s.form = FormValues{}
		return nil
	}
	rec := e.Clone()
	s.state = StateEditing
	s.record = &rec
	s.form = FromEmployee(rec)
	return nil
}

// Cancel closes the session. A submit still in flight completes but its
// outcome no longer changes the session.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	s.epoch++
	s.state = StateClosed
	s.record = nil
	s.form = FormValues{}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Record returns the record being edited, or nil when creating or closed.
func (s *Session) Record() *domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil
	}
	rec := s.record.Clone()
	return &rec
}

func (s *Session) Form() FormValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.clone()
}

// SetForm replaces the form values of an open session.
func (s *Session) SetForm(f FormValues) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return domain.ErrSessionClosed
	}
	s.form = f.clone()
	return nil
}

// Validate checks the current form values.
func (s *Session) Validate() error {
	return s.validator.Validate(s.Form())
}

// Submit validates the form and writes it through the gateway: update when
// the session holds a persisted record, create otherwise. With keepOpen the
// session continues as Editing the server's copy; otherwise it closes. On
// failure the session and its form are left as they were.
func (s *Session) Submit(ctx context.Context, keepOpen bool) (domain.Employee, error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return domain.Employee{}, domain.ErrSessionClosed
	}
	form := s.form.clone()
	var record *domain.Employee
	if s.record != nil {
		rec := s.record.Clone()
		record = &rec
	}
	epoch := s.epoch
	s.mu.Unlock()

	if err := s.validator.Validate(form); err != nil {
		return domain.Employee{}, err
	}

	payload := form.ToEmployee()
	isUpdate := record != nil && record.HasID()
	verb, action := "added", "add"
	if isUpdate {
		verb, action = "updated", "update"
	}
	ctx = logger.WithLogger(ctx, map[string]interface{}{"action": action})

	var (
		result *domain.Employee
		err    error
	)
	if isUpdate {
		result, err = s.gw.Update(ctx, record.IDValue(), payload)
	} else {
		result, err = s.gw.Create(ctx, payload)
	}
	if err != nil {
		logger.ErrorLog(ctx, "Failed to %s employee: %v", action, err)
		s.notifier.Notify(ctx, domain.Notification{
			Level:   domain.NotifyError,
			Title:   "Operation Failed",
			Message: fmt.Sprintf("Failed to %s employee: %v", action, err),
		})
		return domain.Employee{}, domain.AsGatewayError(action+" employee", err)
	}
	if result == nil {
		result = &payload
	}
	saved := result.Clone()

	logger.InfoLog(ctx, "Employee %d %s", saved.IDValue(), verb)
	title := "Employee Added"
	if isUpdate {
		title = "Employee Updated"
	}
	s.notifier.Notify(ctx, domain.Notification{
		Level:   domain.NotifySuccess,
		Title:   title,
		Message: fmt.Sprintf("%s has been successfully %s.", payload.Name, verb),
	})

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		logger.DebugLog(ctx, "Session changed while saving, skipping callbacks")
		return saved, nil
	}
	if keepOpen {
		s.epoch++
		rec := saved.Clone()
		s.state = StateEditing
		s.record = &rec
		s.form = FromEmployee(rec)
	} else {
		s.closeLocked()
	}
	s.mu.Unlock()

	if s.onSaved != nil {
		s.onSaved(ctx, SavedEvent{KeepOpen: keepOpen, Employee: saved.Clone()})
	}
	return saved, nil
}
