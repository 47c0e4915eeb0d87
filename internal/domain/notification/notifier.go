// Package notification defines the reminder messages LevelUp sends and the
// port used to deliver them.
package notification

import (
	"context"
	"fmt"
)

// AppTitle is the title of every reminder.
const AppTitle = "LevelUp Fitness"

// Message is a title/body pair handed to a Notifier.
type Message struct {
	Title string
	Body  string
}

// SessionDue builds the reminder for a due slot.
func SessionDue(sessionID int) Message {
	return Message{
		Title: AppTitle,
		Body:  fmt.Sprintf("It's time for Session %d! Drop and give me a set!", sessionID),
	}
}

// LevelUp builds the celebration for reaching a new level.
func LevelUp(level int) Message {
	return Message{
		Title: "LEVEL UP!",
		Body:  fmt.Sprintf("You reached level %d. Keep pushing!", level),
	}
}

// Notifier delivers a message. Delivery is best effort: callers never retry
// a failed reminder.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Send delivers m through n.
func Send(ctx context.Context, n Notifier, m Message) error {
	return n.Notify(ctx, m.Title, m.Body)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, title, body string) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, title, body string) error {
	return f(ctx, title, body)
}
