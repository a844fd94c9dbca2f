package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/julianstephens/lifeos/internal/logger"
)

// LogTransport writes messages to a writer and to the application log. It is
// the fallback when no webhook is configured.
type LogTransport struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLogTransport(w io.Writer) *LogTransport {
	return &LogTransport{w: w}
}

func (l *LogTransport) Deliver(_ context.Context, dest Destination, msg Message) error {
	text := msg.Plain()
	logger.Info("Notification", "destination", dest.Name, "text", text)
	if l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.w, "[#%s]\n%s\n\n", dest.Name, text)
	return err
}
