package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseBumpCommands(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"hide;obtain", []string{"hide", "obtain"}},
		{" obtain ; ", []string{"obtain"}},
		{"", nil},
		{";;", nil},
	}
	for _, tt := range tests {
		got := ParseBumpCommands(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParseBumpCommands(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseBumpCommands(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestEmptyItem(t *testing.T) {
	e := EmptyItem()
	if !e.IsEmpty() {
		t.Error("EmptyItem() should be empty")
	}
	it := Item{Name: "apple"}
	if it.IsEmpty() {
		t.Error("named item should not be empty")
	}
	// An item literally named Empty that is backed by an entity is real.
	backed := Item{Name: EmptyName, Glop: &Ref{Index: 3, ID: uuid.New()}}
	if backed.IsEmpty() {
		t.Error("item with a glop should not be the sentinel")
	}
}

func TestTryUseCooldown(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	it := Item{Name: "rock", Cooldown: time.Second}

	steps := []struct {
		at   time.Duration
		want bool
	}{
		{0, false}, // arms the cooldown
		{500 * time.Millisecond, false},
		{time.Second, true},
		{1500 * time.Millisecond, false},
		{2 * time.Second, true},
	}
	for _, s := range steps {
		if got := it.TryUse(start.Add(s.at)); got != s.want {
			t.Errorf("TryUse(+%v) = %v, want %v", s.at, got, s.want)
		}
	}
}

func TestTryUseNoCooldown(t *testing.T) {
	it := Item{Name: "rock"}
	now := time.Now()
	if !it.TryUse(now) || !it.TryUse(now) {
		t.Error("item without cooldown should always be usable")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Item{
		Name:         "sling",
		BumpCommands: []string{"obtain"},
		AsProjectile: &Projectile{Name: "stone"},
		Weapon:       &Weapon{Templates: []Ref{{Index: 1}}},
	}
	c := orig.Clone()
	c.BumpCommands[0] = "hide"
	c.AsProjectile.Name = "pebble"
	c.Weapon.Templates[0].Index = 9

	if orig.BumpCommands[0] != "obtain" {
		t.Error("BumpCommands shared with clone")
	}
	if orig.AsProjectile.Name != "stone" {
		t.Error("AsProjectile shared with clone")
	}
	if orig.Weapon.Templates[0].Index != 1 {
		t.Error("Weapon templates shared with clone")
	}
}

func TestItemFlags(t *testing.T) {
	it := Item{BumpCommands: ParseBumpCommands("hide;obtain"), UseCommand: "throw_arc"}
	if !it.HasCommand(CommandObtain) || !it.HasCommand(CommandHide) {
		t.Error("HasCommand() missed a parsed command")
	}
	if !it.IsThrowable() {
		t.Error("throw_arc should be throwable")
	}
	if (&Item{UseCommand: "eat"}).IsThrowable() {
		t.Error("eat should not be throwable")
	}
}

func TestRefIsZero(t *testing.T) {
	if !(Ref{}).IsZero() {
		t.Error("zero Ref should report IsZero")
	}
	if (Ref{Index: 0, ID: uuid.New()}).IsZero() {
		t.Error("Ref with ID should not be zero")
	}
}
