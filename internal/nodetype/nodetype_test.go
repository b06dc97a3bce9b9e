package nodetype

import "testing"

func TestIsNetworkNode(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		want bool
	}{
		{"default is not infrastructure", Default, false},
		{"switch", Switch, true},
		{"hub", Hub, true},
		{"wlan", WLAN, true},
		{"ptp", PeerToPeer, true},
		{"unknown code is not infrastructure", Type(99), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNetworkNode(tc.typ); got != tc.want {
				t.Errorf("IsNetworkNode(%d) = %v, want %v", tc.typ, got, tc.want)
			}
		})
	}
}

func TestDisplayFor(t *testing.T) {
	t.Run("known type", func(t *testing.T) {
		d, err := DisplayFor(Switch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Name != "switch" {
			t.Errorf("expected name 'switch', got %q", d.Name)
		}
		if d.Label != "Switch" {
			t.Errorf("expected label 'Switch', got %q", d.Label)
		}
	})

	t.Run("unknown code is an error, not a default", func(t *testing.T) {
		if _, err := DisplayFor(Type(7)); err == nil {
			t.Error("expected error for unknown type code")
		}
	})
}

func TestIcon(t *testing.T) {
	t.Run("default type dispatches on model", func(t *testing.T) {
		cases := map[Model]string{
			ModelRouter: "icons/router.svg",
			ModelHost:   "icons/host.svg",
			ModelPC:     "icons/pc.svg",
			ModelMDR:    "icons/mdr.svg",
			"":          "icons/router.svg",
		}
		for model, want := range cases {
			got, err := Icon(Default, model)
			if err != nil {
				t.Fatalf("Icon(Default, %q): %v", model, err)
			}
			if got != want {
				t.Errorf("Icon(Default, %q) = %q, want %q", model, got, want)
			}
		}
	})

	t.Run("infrastructure types dispatch on type", func(t *testing.T) {
		got, err := Icon(WLAN, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "icons/wlan.svg" {
			t.Errorf("expected wlan icon, got %q", got)
		}
	})

	t.Run("unknown model on default type", func(t *testing.T) {
		if _, err := Icon(Default, Model("mainframe")); err == nil {
			t.Error("expected error for unknown model")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := Icon(Type(99), ""); err == nil {
			t.Error("expected error for unknown type")
		}
	})
}
