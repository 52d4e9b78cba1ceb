package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
	capitantesting "github.com/zoobzio/capitan/testing"
)

func TestEmitRoundTripsFields(t *testing.T) {
	capture := capitantesting.NewEventCapture()
	listener := capitan.Hook(GroupCommitted, capture.Handler())
	defer listener.Close()

	capitan.Emit(context.Background(), GroupCommitted,
		FieldGroup.Field("group_abc"),
		FieldMemberCount.Field(3),
	)

	if !capture.WaitForCount(1, time.Second) {
		t.Fatal("expected GroupCommitted event")
	}
	events := capture.Events()
	var group string
	for _, f := range events[0].Fields {
		if f.Key().Name() == FieldGroup.Name() {
			group, _ = f.Value().(string)
		}
	}
	if group != "group_abc" {
		t.Errorf("expected group 'group_abc', got %q", group)
	}
}

func TestIntFieldFrom(t *testing.T) {
	got := make(chan int, 1)
	listener := capitan.Hook(FrameAdded, func(_ context.Context, e *capitan.Event) {
		n, _ := FieldBufferLen.From(e)
		got <- n
	})
	defer listener.Close()

	capitan.Emit(context.Background(), FrameAdded, FieldBufferLen.Field(7))

	select {
	case n := <-got:
		if n != 7 {
			t.Errorf("expected buffer_len 7, got %d", n)
		}
	case <-time.After(time.Second):
		t.Fatal("expected FrameAdded event")
	}
}

func TestErrorFieldFrom(t *testing.T) {
	got := make(chan error, 1)
	listener := capitan.Hook(SnapshotFailed, func(_ context.Context, e *capitan.Event) {
		err, _ := FieldError.From(e)
		got <- err
	})
	defer listener.Close()

	want := errors.New("disk full")
	capitan.Error(context.Background(), SnapshotFailed, FieldError.Field(want))

	select {
	case err := <-got:
		if err == nil || err.Error() != want.Error() {
			t.Errorf("expected %v, got %v", want, err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected SnapshotFailed event")
	}
}
