// Package notify contains the sinks for user-facing notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/logger"
)

// LogNotifier records notifications in the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n domain.Notification) {
	ctx = logger.WithLogger(ctx, map[string]interface{}{"notification": string(n.Level)})
	if n.Level == domain.NotifyError {
		logger.WarnLog(ctx, "%s: %s", n.Title, n.Message)
		return
	}
	logger.InfoLog(ctx, "%s: %s", n.Title, n.Message)
}

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
)

// Terminal renders notifications as styled lines on a writer.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Notify(_ context.Context, n domain.Notification) {
	style, mark := successStyle, "✔"
	if n.Level == domain.NotifyError {
		style, mark = errorStyle, "✘"
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s %s\n", style.Render(mark+" "+n.Title), messageStyle.Render(n.Message))
}

// Multi fans a notification out to several notifiers.
type Multi []domain.Notifier

func (m Multi) Notify(ctx context.Context, n domain.Notification) {
	for _, notifier := range m {
		notifier.Notify(ctx, n)
	}
}

// Recorder keeps notifications in memory, newest last.
type Recorder struct {
	mu  sync.Mutex
	all []domain.Notification
}

func (r *Recorder) Notify(_ context.Context, n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Last returns the newest notification.
func (r *Recorder) Last() (domain.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.all) == 0 {
		return domain.Notification{}, false
	}
	return r.all[len(r.all)-1], true
}
