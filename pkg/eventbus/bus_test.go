// SPDX-License-Identifier: BSD-3-Clause

package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/powersupd/powersupd/pkg/eventbus"
)

func startBus(t *testing.T) *eventbus.Bus {
	t.Helper()

	b := eventbus.New(eventbus.WithServiceName("test-bus"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
		defer stopCancel()
		_ = b.Stop(stopCtx)
	})
	return b
}

func TestBusEmitAndRegister(t *testing.T) {
	b := startBus(t)
	ctx := context.Background()

	received := make(chan []byte, 1)
	sub, err := b.Register(eventbus.KindButtonClicked, func(kind eventbus.Kind, payload []byte) {
		if kind != eventbus.KindButtonClicked {
			t.Errorf("handler kind = %v, want KindButtonClicked", kind)
		}
		received <- payload
	})
	if err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	defer b.Deregister(sub)

	if err := b.Emit(ctx, eventbus.KindButtonClicked, []byte("payload")); err != nil {
		t.Fatalf("Emit() returned error: %v", err)
	}

	select {
	case payload := <-received:
		if string(payload) != "payload" {
			t.Fatalf("received payload = %q, want %q", payload, "payload")
		}
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestBusRegisterAny(t *testing.T) {
	b := startBus(t)
	ctx := context.Background()

	received := make(chan eventbus.Kind, 2)
	sub, err := b.Register(eventbus.KindAny, func(kind eventbus.Kind, _ []byte) {
		received <- kind
	})
	if err != nil {
		t.Fatalf("Register(KindAny) returned error: %v", err)
	}
	defer b.Deregister(sub)

	if err := b.Emit(ctx, eventbus.KindBatteryLow, nil); err != nil {
		t.Fatalf("Emit() returned error: %v", err)
	}
	if err := b.Emit(ctx, eventbus.KindDeviceShutdown, nil); err != nil {
		t.Fatalf("Emit() returned error: %v", err)
	}

	seen := map[eventbus.Kind]bool{}
	for i := 0; i < 2; i++ {
		select {
		case k := <-received:
			seen[k] = true
		case <-time.After(time.Second):
			t.Fatal("did not receive both events")
		}
	}
	if !seen[eventbus.KindBatteryLow] || !seen[eventbus.KindDeviceShutdown] {
		t.Fatalf("seen = %v, want both battery.low and device.shutdown", seen)
	}
}

func TestBusEmitKindAnyRejected(t *testing.T) {
	b := startBus(t)

	if err := b.Emit(context.Background(), eventbus.KindAny, nil); err == nil {
		t.Fatal("Emit(KindAny) returned nil error, want ErrUnknownKind")
	}
}

func TestBusDeregisterTwiceIsSoft(t *testing.T) {
	b := startBus(t)

	sub, err := b.Register(eventbus.KindUserEvent, func(eventbus.Kind, []byte) {})
	if err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	if err := b.Deregister(sub); err != nil {
		t.Fatalf("first Deregister() returned error: %v", err)
	}
	if err := b.Deregister(sub); err != nil {
		t.Fatalf("second Deregister() returned error: %v, want nil", err)
	}
}

func TestBusEmitBeforeStartFails(t *testing.T) {
	b := eventbus.New(eventbus.WithServiceName("unstarted"))
	if err := b.Emit(context.Background(), eventbus.KindUserEvent, nil); err == nil {
		t.Fatal("Emit() before Start() returned nil error, want ErrNotStarted")
	}
}
