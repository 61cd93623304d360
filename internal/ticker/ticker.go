// Package ticker holds the cosmetic, cancelable animations shown by clients:
// rotating status lines while questions are generated and a typewriter effect.
package ticker

import (
	"context"
	"io"
	"sync"
	"time"
)

// DefaultInterval is how long each status line stays up.
const DefaultInterval = 1800 * time.Millisecond

// StatusMessages rotate while the question source is working.
var StatusMessages = []string{
	"Mounting RHEL 10 Scenario ISO...",
	"Allocating Virtual Context Resources...",
	"Pulling Module 1-15 Telemetry...",
	"Configuring Systemd Lab Targets...",
	"Finalizing Enterprise Integrity Check...",
}

// Rotate emits messages in turn, the first immediately and then one per
// interval, until ctx ends or stop is called. stop is idempotent and returns
// once no further emit can happen.
func Rotate(ctx context.Context, interval time.Duration, messages []string, emit func(string)) (stop func()) {
	if len(messages) == 0 {
		return func() {}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()

		for i := 0; ; i++ {
			emit(messages[i%len(messages)])
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// Typewrite writes text one rune at a time with delay between runes. It
// stops early when ctx ends; the remainder is not written.
func Typewrite(ctx context.Context, w io.Writer, text string, delay time.Duration) error {
	if delay <= 0 {
		_, err := io.WriteString(w, text)
		return err
	}
	t := time.NewTicker(delay)
	defer t.Stop()

	for _, r := range text {
		if _, err := io.WriteString(w, string(r)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
