package domain

import "context"

// EmployeeGateway defines the interface to the remote employee resource
type EmployeeGateway interface {
	List(ctx context.Context) ([]Employee, error)
	Get(ctx context.Context, id int) (*Employee, error)
	Create(ctx context.Context, e Employee) (*Employee, error)
	Update(ctx context.Context, id int, e Employee) (*Employee, error)
	Delete(ctx context.Context, id int) error
}

// PreferenceStore persists client-local UI preferences
type PreferenceStore interface {
	LoadSort(ctx context.Context) (SortPreference, error)
	SaveSort(ctx context.Context, pref SortPreference) error
}

type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
)

// Notification is a user-facing message (toast).
type Notification struct {
	Level   NotificationLevel
	Title   string
	Message string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}
