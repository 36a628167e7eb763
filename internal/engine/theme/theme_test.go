package theme

import (
	"testing"
)

func TestSetModeNotifiesOnChangeOnly(t *testing.T) {
	bus := New(Light, DefaultPalettes())

	var got []Mode
	unsub := bus.Subscribe(func(m Mode) { got = append(got, m) })
	defer unsub()

	bus.SetMode(Light)
	if len(got) != 0 {
		t.Fatalf("no-op SetMode notified %d times, want 0", len(got))
	}

	bus.SetMode(Dark)
	bus.SetMode(Dark)
	if len(got) != 1 || got[0] != Dark {
		t.Errorf("notifications = %v, want [dark]", got)
	}
}

func TestDoubleToggleIsIdempotent(t *testing.T) {
	bus := New(Dark, DefaultPalettes())

	calls := 0
	bus.Subscribe(func(Mode) { calls++ })

	bus.Toggle()
	bus.Toggle()

	if bus.Mode() != Dark {
		t.Errorf("mode after double toggle = %v, want dark", bus.Mode())
	}
	if calls != 2 {
		t.Errorf("notifications = %d, want exactly 2", calls)
	}
}

func TestFanOutInSubscriptionOrder(t *testing.T) {
	bus := New(Light, DefaultPalettes())

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Subscribe(func(Mode) { order = append(order, i) })
	}

	bus.Toggle()

	if len(order) != 5 {
		t.Fatalf("got %d notifications, want 5", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Errorf("order[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := New(Light, DefaultPalettes())

	calls := 0
	unsub := bus.Subscribe(func(Mode) { calls++ })
	if bus.Listeners() != 1 {
		t.Fatalf("Listeners() = %d, want 1", bus.Listeners())
	}

	unsub()
	unsub() // second call is a no-op

	if bus.Listeners() != 0 {
		t.Errorf("Listeners() after unsubscribe = %d, want 0", bus.Listeners())
	}
	bus.Toggle()
	if calls != 0 {
		t.Errorf("unsubscribed listener called %d times", calls)
	}
}

func TestUnsubscribeDuringNotify(t *testing.T) {
	bus := New(Light, DefaultPalettes())

	var second int
	var unsubSecond func()
	bus.Subscribe(func(Mode) { unsubSecond() })
	unsubSecond = bus.Subscribe(func(Mode) { second++ })

	bus.Toggle()

	if second != 0 {
		t.Errorf("listener removed mid-notify was still called %d times", second)
	}
	if bus.Listeners() != 1 {
		t.Errorf("Listeners() = %d, want 1", bus.Listeners())
	}
}

func TestPaletteFollowsMode(t *testing.T) {
	p := DefaultPalettes()
	bus := New(Light, p)
	if bus.Palette() != p.Light {
		t.Error("light bus should expose the light palette")
	}
	bus.Toggle()
	if bus.Palette() != p.Dark {
		t.Error("dark bus should expose the dark palette")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"light", Light, false},
		{"dark", Dark, false},
		{"", Light, false},
		{"sepia", Light, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && tt.in != "" && got.String() != tt.in {
			t.Errorf("Mode.String() = %q, want %q", got.String(), tt.in)
		}
	}
}
