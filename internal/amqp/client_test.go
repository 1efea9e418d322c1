package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"safisha/internal/core"
	"safisha/internal/sheets"
)

func TestBackoffDoublesUntilCap(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, maxBackoff, maxBackoff}
	for attempt, w := range want {
		if got := exponentialBackoff(attempt); got != w {
			t.Errorf("attempt %d: got %v, want %v", attempt, got, w)
		}
	}
	if got := exponentialBackoff(40); got != maxBackoff {
		t.Errorf("large attempt: got %v, want %v", got, maxBackoff)
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want bool
	}{
		"nil":               {nil, false},
		"amqp closed":       {amqp091.ErrClosed, true},
		"wrapped closed":    {fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		"refused":           {errors.New("dial tcp: Connection refused"), true},
		"eof":               {errors.New("unexpected EOF"), true},
		"broken pipe":       {errors.New("write: broken pipe"), true},
		"precondition":      {errors.New("PRECONDITION_FAILED - inequivalent arg"), false},
		"serialization bug": {errors.New("json: unsupported type"), false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func state(c *Client) int32 { return atomic.LoadInt32(&c.state) }

func TestCircuitBreakerLifecycle(t *testing.T) {
	c := &Client{exchangeName: "safisha", queueName: "safisha.mirror"}

	if c.isCircuitOpen() {
		t.Fatal("new client should start closed")
	}

	for i := 1; i < maxFailures; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatalf("%d failures should not open the circuit", maxFailures-1)
	}
	c.recordFailure()
	if !c.isCircuitOpen() || state(c) != StateOpen {
		t.Fatal("threshold reached, circuit should be open")
	}

	c.mu.Lock()
	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	c.mu.Unlock()
	if c.isCircuitOpen() || state(c) != StateHalfOpen {
		t.Fatal("after the open timeout the circuit should be half-open")
	}

	// one failed probe reopens immediately
	c.recordFailure()
	if state(c) != StateOpen {
		t.Fatal("failure while half-open should reopen the circuit")
	}

	c.recordSuccess()
	if state(c) != StateClosed || atomic.LoadInt64(&c.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset the count")
	}
}

func TestPublishShortCircuits(t *testing.T) {
	entry := sheets.EntryFromSale(core.Sale{ID: "1704873600000", Employee: "Otieno", Amount: "500"})

	open := &Client{state: StateOpen, lastFailure: time.Now()}
	if err := open.PublishEntryMirror(context.Background(), entry); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open circuit: got %v, want ErrCircuitOpen", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	closed := &Client{}
	if err := closed.PublishEntryMirror(ctx, entry); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled ctx: got %v, want context.Canceled", err)
	}
}

func TestEntryMirrorMessageRoundTrip(t *testing.T) {
	entry := sheets.EntryFromSale(core.Sale{
		ID: "1704873600000", Date: "2024-01-10", Category: core.CategoryVehicle,
		Employee: "Otieno", VehicleServiceType: "Exterior Wash", Amount: "500",
	})
	msg := NewEntryMirrorMessage(entry)
	if time.Since(msg.Timestamp) > time.Second {
		t.Errorf("timestamp %v should be now", msg.Timestamp)
	}

	raw, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	back, err := EntryMirrorMessageFromJSON(raw)
	if err != nil {
		t.Fatalf("EntryMirrorMessageFromJSON: %v", err)
	}
	if back.Entry != entry {
		t.Errorf("entry = %+v, want %+v", back.Entry, entry)
	}
	if !back.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("timestamp = %v, want %v", back.Timestamp, msg.Timestamp)
	}

	if _, err := EntryMirrorMessageFromJSON([]byte(`{"entry": [1, 2]}`)); err == nil {
		t.Error("malformed message should fail to decode")
	}
}
