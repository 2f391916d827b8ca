package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/conorfennell/studymate/internal/domain"
)

// Console prints reminders to a terminal. A configured "default" permission turns
// into "granted" on request; "denied" is final.
type Console struct {
	mu         sync.Mutex
	out        io.Writer
	permission domain.Permission
	now        func() time.Time
}

// NewConsole creates a console notifier writing to out.
func NewConsole(out io.Writer, permission domain.Permission) *Console {
	return &Console{out: out, permission: permission, now: time.Now}
}

// Permission implements Notifier.
func (c *Console) Permission() domain.Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permission
}

// RequestPermission implements Notifier.
func (c *Console) RequestPermission(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.permission == domain.PermissionDefault {
		c.permission = domain.PermissionGranted
	}
}

// Show implements Notifier. The leading BEL makes most terminals flash or beep.
func (c *Console) Show(_ context.Context, title, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "\a[%s] %s: %s\n", c.now().Format("15:04"), title, body)
	return err
}

// Reminder is a reminder waiting to be picked up by a web page.
type Reminder struct {
	Title string
	Body  string
	At    time.Time
}

// Inbox holds reminders until the web page polls for them. The page owns the
// permission decision, so RequestPermission only records that one is pending.
type Inbox struct {
	mu         sync.Mutex
	permission domain.Permission
	requested  bool
	pending    []Reminder
	max        int
	now        func() time.Time
}

// NewInbox creates an inbox keeping at most max undelivered reminders.
func NewInbox(permission domain.Permission, max int) *Inbox {
	if max <= 0 {
		max = 1
	}
	return &Inbox{permission: permission, max: max, now: time.Now}
}

// Permission implements Notifier.
func (i *Inbox) Permission() domain.Permission {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.permission
}

// RequestPermission implements Notifier.
func (i *Inbox) RequestPermission(context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.permission == domain.PermissionDefault {
		i.requested = true
	}
}

// PermissionRequested reports whether the page should ask the user.
func (i *Inbox) PermissionRequested() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.requested && i.permission == domain.PermissionDefault
}

// SetPermission records the user's answer from the page.
func (i *Inbox) SetPermission(p domain.Permission) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.permission = p
	i.requested = false
	if p != domain.PermissionGranted {
		i.pending = nil
	}
}

// Show implements Notifier. Older reminders are dropped beyond the inbox limit.
func (i *Inbox) Show(_ context.Context, title, body string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pending = append(i.pending, Reminder{Title: title, Body: body, At: i.now()})
	if len(i.pending) > i.max {
		i.pending = i.pending[len(i.pending)-i.max:]
	}
	return nil
}

// Drain returns and clears the pending reminders.
func (i *Inbox) Drain() []Reminder {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.pending
	i.pending = nil
	return out
}
