package commands

import (
	"context"
	"errors"
	"testing"
)

type pingCommand struct{ Value string }

func (pingCommand) Key() string { return "test.ping" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, string](bus, "test.ping", HandlerFunc[pingCommand, string](func(ctx context.Context, cmd pingCommand) (string, error) {
		return "pong:" + cmd.Value, nil
	}))

	got, err := Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Value: "x"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != "pong:x" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	bus := NewInMemoryBus()
	_, err := Dispatch[otherCommand, string](context.Background(), bus, otherCommand{})
	if !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("expected ErrHandlerNotFound, got %v", err)
	}
}

func TestDispatchResultTypeMismatch(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, int](bus, "test.ping", HandlerFunc[pingCommand, int](func(context.Context, pingCommand) (int, error) {
		return 1, nil
	}))
	_, err := Dispatch[pingCommand, string](context.Background(), bus, pingCommand{})
	if !errors.Is(err, ErrResultType) {
		t.Fatalf("expected ErrResultType, got %v", err)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[pingCommand, string](func(context.Context, pingCommand) (string, error) { return "", nil })
	RegisterHandler[pingCommand, string](bus, "test.ping", h)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	RegisterHandler[pingCommand, string](bus, "test.ping", h)
}
