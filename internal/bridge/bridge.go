// Package bridge correlates asynchronous host responses with the requests
// that caused them. Callers register a correlation key before triggering the
// host side, so a response can never arrive ahead of its waiter, then block
// until the response is delivered or a deadline passes. Keys are either event
// names emitted by webview scripts or per-request UUIDs.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/saker-ai/tauri-agent/internal/errdefs"
)

// Bridge routes response payloads to registered waiters, one per key.
type Bridge struct {
	mu      sync.Mutex
	waiters map[string]chan json.RawMessage
}

// New returns an empty bridge.
func New() *Bridge {
	return &Bridge{waiters: make(map[string]chan json.RawMessage)}
}

// Register claims key and returns the channel its response will arrive on.
// A key with a request already in flight is rejected so two callers can
// never consume each other's responses.
func (b *Bridge) Register(key string) (<-chan json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, busy := b.waiters[key]; busy {
		return nil, errdefs.Newf(errdefs.CorrelationBusy, "a request for %q is already in flight", key)
	}
	ch := make(chan json.RawMessage, 1)
	b.waiters[key] = ch
	return ch, nil
}

// Deregister releases key if ch is still the registered waiter. Used when
// sending the triggering message fails after registration.
func (b *Bridge) Deregister(key string, ch <-chan json.RawMessage) {
	b.mu.Lock()
	if cur, ok := b.waiters[key]; ok && cur == ch {
		delete(b.waiters, key)
	}
	b.mu.Unlock()
}

// Resolve delivers payload to the waiter registered under key and reports
// whether one was waiting. The entry is removed before the send, and the
// channel buffers one payload, so delivery never blocks.
func (b *Bridge) Resolve(key string, payload json.RawMessage) bool {
	b.mu.Lock()
	ch, ok := b.waiters[key]
	if ok {
		delete(b.waiters, key)
		ch <- payload
	}
	b.mu.Unlock()
	return ok
}

// Await blocks until the response arrives on ch, the timeout elapses, or ctx
// is canceled. On timeout the registration is removed, so a response arriving
// later finds no waiter and is dropped by Resolve.
func (b *Bridge) Await(ctx context.Context, key string, ch <-chan json.RawMessage, timeout time.Duration) (json.RawMessage, error) {
	select {
	case payload := <-ch:
		return payload, nil
	case <-time.After(timeout):
		if payload, delivered := b.abandon(key, ch); delivered {
			return payload, nil
		}
		return nil, errdefs.Newf(errdefs.Timeout, "no response for %q within %s", key, timeout)
	case <-ctx.Done():
		if payload, delivered := b.abandon(key, ch); delivered {
			return payload, nil
		}
		return nil, errdefs.Wrap(errdefs.Timeout, fmt.Sprintf("wait for %q", key), ctx.Err())
	}
}

// abandon removes the registration for ch, or claims a payload that was
// resolved concurrently with the deadline firing.
func (b *Bridge) abandon(key string, ch <-chan json.RawMessage) (json.RawMessage, bool) {
	b.mu.Lock()
	cur, pending := b.waiters[key]
	if pending && cur == ch {
		delete(b.waiters, key)
		b.mu.Unlock()
		return nil, false
	}
	b.mu.Unlock()
	// Resolve removed the entry first, so its payload is buffered.
	select {
	case payload := <-ch:
		return payload, true
	default:
		return nil, false
	}
}

// Do runs one full correlation cycle: register key, invoke send to trigger
// the host side, and await the response. A send failure releases the key.
func (b *Bridge) Do(ctx context.Context, key string, timeout time.Duration, send func() error) (json.RawMessage, error) {
	ch, err := b.Register(key)
	if err != nil {
		return nil, err
	}
	if err := send(); err != nil {
		b.Deregister(key, ch)
		return nil, err
	}
	return b.Await(ctx, key, ch, timeout)
}

// Pending returns the number of keys with a request in flight.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.waiters)
}
