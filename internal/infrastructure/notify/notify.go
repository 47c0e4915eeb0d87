// Package notify contains Notifier adapters for running the tracker headless.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.uber.org/multierr"

	"github.com/levelup-fitness/levelup-core/internal/domain/notification"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// LogNotifier writes every notification to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{logger: log.With(logger.Component("notifier"))}
}

// Notify implements notification.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, title, body string) error {
	n.logger.InfoContext(ctx, "notification", slog.String("title", title), slog.String("body", body))
	return nil
}

// WriterNotifier prints "title: body" lines to a writer, such as a terminal.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a WriterNotifier.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify implements notification.Notifier.
func (n *WriterNotifier) Notify(_ context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.w, "%s: %s\n", title, body)
	return err
}

// Multi delivers to every notifier and combines their errors.
type Multi []notification.Notifier

// Notify implements notification.Notifier.
func (m Multi) Notify(ctx context.Context, title, body string) error {
	var errs error
	for _, n := range m {
		errs = multierr.Append(errs, n.Notify(ctx, title, body))
	}
	return errs
}
