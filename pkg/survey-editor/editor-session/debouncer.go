package editorsession

import (
	"sync"
	"time"
)

const DEFAULT_SAVE_DELAY = 2 * time.Second

// Debouncer runs action once after no Trigger happened for the configured delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	action  func() error
	onError func(error)
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewDebouncer creates a debouncer. Errors of actions started by the timer are passed to onError, which may be nil.
func NewDebouncer(delay time.Duration, action func() error, onError func(error)) *Debouncer {
	if delay <= 0 {
		delay = DEFAULT_SAVE_DELAY
	}
	return &Debouncer{
		delay:   delay,
		action:  action,
		onError: onError,
	}
}

// Trigger (re)starts the quiescence interval.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	if !d.takePending() {
		return
	}
	if err := d.action(); err != nil && d.onError != nil {
		d.onError(err)
	}
}

func (d *Debouncer) takePending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	was := d.pending
	d.pending = false
	return was
}

// Flush runs a pending action immediately.
func (d *Debouncer) Flush() error {
	if !d.takePending() {
		return nil
	}
	return d.action()
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop drops a pending action. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.takePending()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
