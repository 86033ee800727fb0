package memory

import (
	"context"
	"sync"

	appoutbox "stayhub/internal/app/outbox"
)

// Outbox keeps event records in memory. Flush only marks them delivered.
type Outbox struct {
	mu        sync.Mutex
	pending   []appoutbox.EventRecord
	delivered []appoutbox.EventRecord
}

func NewOutbox() *Outbox { return &Outbox{} }

func (o *Outbox) Add(_ context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delivered = append(o.delivered, o.pending...)
	o.pending = nil
	return nil
}

// Names lists the names of every delivered record in order.
func (o *Outbox) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.delivered))
	for _, rec := range o.delivered {
		out = append(out, rec.Name)
	}
	return out
}
