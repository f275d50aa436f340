package db

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/lib/pq"
)

// Notifier publishes report-archived events on a Postgres channel so that
// dashboards watching the archive can refresh without polling.
type Notifier struct {
	db      *sql.DB
	channel string
}

func NewNotifier(db *sql.DB, channel string) *Notifier {
	return &Notifier{db: db, channel: channel}
}

// ReportSaved announces that a consultation's report reached the archive.
// The payload is the consultation ID.
func (n *Notifier) ReportSaved(ctx context.Context, consultationID string) error {
	_, err := n.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", n.channel, consultationID)
	return err
}

// Listener receives report-archived events and fans them out to any number
// of watchers. One Postgres connection serves all of them; pq reconnects
// it on failure.
type Listener struct {
	pl *pq.Listener

	mu   sync.Mutex
	subs map[chan string]struct{}
	done chan struct{}
}

// NewListener subscribes to the archive channel and starts the fan-out
// loop.
func NewListener(connStr, channel string) (*Listener, error) {
	pl := pq.NewListener(connStr, 10*time.Second, time.Minute, nil)
	if err := pl.Listen(channel); err != nil {
		_ = pl.Close()
		return nil, err
	}
	l := &Listener{
		pl:   pl,
		subs: make(map[chan string]struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *Listener) run() {
	for {
		select {
		case <-l.done:
			return
		case n := <-l.pl.Notify:
			// pq delivers nil after a reconnect to signal a possible gap.
			if n == nil {
				continue
			}
			l.broadcast(n.Extra)
		case <-time.After(90 * time.Second):
			go l.pl.Ping()
		}
	}
}

func (l *Listener) broadcast(consultationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- consultationID:
		default:
			// A watcher that stopped reading loses events rather than
			// blocking everyone else.
		}
	}
}

// Subscribe registers a watcher. The returned cancel func must be called
// when the watcher goes away; the channel is closed by cancel or Close.
func (l *Listener) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 8)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.subs[ch]; ok {
			delete(l.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Close stops the fan-out loop and drops all subscribers.
func (l *Listener) Close() error {
	l.mu.Lock()
	select {
	case <-l.done:
	default:
		close(l.done)
	}
	for ch := range l.subs {
		delete(l.subs, ch)
		close(ch)
	}
	l.mu.Unlock()
	return l.pl.Close()
}
