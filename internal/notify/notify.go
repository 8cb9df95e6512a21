// Package notify carries user-facing notifications from the dashboard's
// network boundaries to whatever renders them.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kind classifies a notification for display.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// User-facing texts.
const (
	TitleInvalidData     = "Server returned invalid data"
	TitleLoadFailed      = "Failed to load incidents, check your connection"
	TitleAnnotationError = "Failed to save annotation"
	TitleAnnotationSaved = "Annotation saved"
)

// Notification is one toast shown to the user.
type Notification struct {
	ID      uint64    `json:"id"`
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(kind Kind, title, message string)
}

const defaultFeedSize = 20

// Feed keeps the most recent notifications in memory and logs each one.
type Feed struct {
	mu     sync.Mutex
	items  []Notification
	size   int
	nextID uint64
	logger zerolog.Logger
	now    func() time.Time
}

// NewFeed creates a feed holding at most size notifications. A size of zero
// or less uses the default.
func NewFeed(size int, logger zerolog.Logger) *Feed {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &Feed{
		size:   size,
		logger: logger.With().Str("component", "notify").Logger(),
		now:    time.Now,
	}
}

func (f *Feed) Notify(kind Kind, title, message string) {
	f.mu.Lock()
	f.nextID++
	n := Notification{
		ID:      f.nextID,
		Kind:    kind,
		Title:   title,
		Message: message,
		Time:    f.now().UTC(),
	}
	f.items = append(f.items, n)
	if len(f.items) > f.size {
		f.items = append(f.items[:0:0], f.items[len(f.items)-f.size:]...)
	}
	f.mu.Unlock()

	ev := f.logger.Info()
	if kind == KindError {
		ev = f.logger.Warn()
	}
	ev.Uint64("notification_id", n.ID).Str("kind", string(kind)).Str("message", message).Msg(title)
}

// Recent returns the held notifications, oldest first.
func (f *Feed) Recent() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Since returns notifications with an ID greater than id.
func (f *Feed) Since(id uint64) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Notification
	for _, n := range f.items {
		if n.ID > id {
			out = append(out, n)
		}
	}
	return out
}

// Dismiss removes a notification by ID.
func (f *Feed) Dismiss(id uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(Kind, string, string) {}
