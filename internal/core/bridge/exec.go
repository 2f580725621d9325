package bridge

import (
	"context"
	"sync"
)

// Poster runs fn on the goroutine that owns it
type Poster interface {
	Post(fn func())
}

// Loop is a long-lived caller goroutine; posted functions run in order inside Run
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop returns an idle loop
func NewLoop() *Loop { return &Loop{wake: make(chan struct{}, 1)} }

// Post queues fn and never blocks
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains posted functions on the calling goroutine until ctx ends
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.drain()
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()
		fn()
	}
}

// Mailbox is a one-shot caller for request scoped goroutines such as HTTP handlers
type Mailbox struct {
	ch chan func()
}

// NewMailbox returns an empty mailbox
func NewMailbox() *Mailbox { return &Mailbox{ch: make(chan func(), 1)} }

// Post stores fn; only the first post is kept
func (m *Mailbox) Post(fn func()) {
	select {
	case m.ch <- fn:
	default:
	}
}

// Wait runs the posted function on the calling goroutine; false if ctx ends first
func (m *Mailbox) Wait(ctx context.Context) bool {
	select {
	case fn := <-m.ch:
		fn()
		return true
	case <-ctx.Done():
		return false
	}
}
