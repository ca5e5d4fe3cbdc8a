package event

import "testing"

func TestBusDispatchesNextSwap(t *testing.T) {
	b := NewBus()
	var got []any
	b.Subscribe(func(ev any) { got = append(got, ev) })

	b.Emit(PlayerJoined{CharID: 1, Name: "Arden"})
	b.Emit(PlayerLeft{CharID: 2})
	if b.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", b.Pending())
	}

	// Nothing delivered before the swap.
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("dispatched %d events before swap", len(got))
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 {
		t.Fatalf("dispatched %d events, want 2", len(got))
	}
	if _, ok := got[0].(PlayerJoined); !ok {
		t.Fatalf("first event = %T, want PlayerJoined", got[0])
	}
}

func TestEmitDuringDispatchWaitsATick(t *testing.T) {
	b := NewBus()
	delivered := 0
	b.Subscribe(func(ev any) {
		delivered++
		if _, ok := ev.(PlayerJoined); ok {
			// Reaction events land in the back buffer for the next tick.
			b.Emit(PlayerLeft{CharID: 1})
		}
	})

	b.Emit(PlayerJoined{CharID: 1})
	b.SwapBuffers()
	b.DispatchAll()
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if delivered != 2 {
		t.Fatalf("delivered = %d after second swap, want 2", delivered)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	b := NewBus()
	a, c := 0, 0
	b.Subscribe(func(any) { a++ })
	b.Subscribe(func(any) { c++ })
	b.Emit(ObjectDepleted{ObjectID: 5})
	b.SwapBuffers()
	b.DispatchAll()
	if a != 1 || c != 1 {
		t.Fatalf("subscribers saw %d/%d events, want 1/1", a, c)
	}
}
