package notifier

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"rgccr-notice-check/internal/notice"
	"rgccr-notice-check/internal/observability"
)

type fakeChannel struct {
	name  string
	err   error
	calls atomic.Int32
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, _ []notice.Notice) error {
	f.calls.Add(1)
	return f.err
}

func TestDispatchAllChannelsSucceed(t *testing.T) {
	email := &fakeChannel{name: "email"}
	telegram := &fakeChannel{name: "telegram"}
	d := NewDispatcher(observability.NewTestLogger(), email, telegram)

	err := d.Dispatch(context.Background(), []notice.Notice{{Title: "n", URL: "u"}})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if email.calls.Load() != 1 || telegram.calls.Load() != 1 {
		t.Errorf("each channel must be attempted once: email=%d telegram=%d",
			email.calls.Load(), telegram.calls.Load())
	}
}

func TestDispatchOneFailureDoesNotBlockOthers(t *testing.T) {
	email := &fakeChannel{name: "email", err: errors.New("smtp down")}
	telegram := &fakeChannel{name: "telegram"}
	d := NewDispatcher(observability.NewTestLogger(), email, telegram)

	err := d.Dispatch(context.Background(), []notice.Notice{{Title: "n", URL: "u"}})

	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if len(dispatchErr.Failed) != 1 || dispatchErr.Failed[0].Channel != "email" {
		t.Errorf("expected only the email channel to fail, got %+v", dispatchErr.Failed)
	}
	if telegram.calls.Load() != 1 {
		t.Error("telegram channel was not attempted after email failure")
	}
}

func TestDispatchTotalFailure(t *testing.T) {
	email := &fakeChannel{name: "email", err: errors.New("smtp down")}
	telegram := &fakeChannel{name: "telegram", err: errors.New("api down")}
	d := NewDispatcher(observability.NewTestLogger(), email, telegram)

	err := d.Dispatch(context.Background(), []notice.Notice{{Title: "n", URL: "u"}})

	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if len(dispatchErr.Failed) != 2 {
		t.Errorf("expected both channels in the error, got %+v", dispatchErr.Failed)
	}
}

func TestDispatchEmptyListIsNoOp(t *testing.T) {
	email := &fakeChannel{name: "email"}
	d := NewDispatcher(observability.NewTestLogger(), email)

	if err := d.Dispatch(context.Background(), nil); err != nil {
		t.Fatalf("Dispatch(nil): %v", err)
	}
	if email.calls.Load() != 0 {
		t.Error("no channel should be invoked for an empty notice list")
	}
}
