package library

import (
	"testing"

	"github.com/Iron-Ham/gamedex/internal/errors"
)

func TestRoundUpToPack(t *testing.T) {
	tests := []struct {
		quantity, pack, want int
	}{
		{15, 10, 20},
		{20, 10, 20},
		{1, 10, 10},
		{0, 10, 0},
		{-4, 10, 0},
		{7, 1, 7},
		{7, 0, 7},
		{13, 6, 18},
	}

	for _, tt := range tests {
		if got := RoundUpToPack(tt.quantity, tt.pack); got != tt.want {
			t.Errorf("RoundUpToPack(%d, %d) = %d, want %d", tt.quantity, tt.pack, got, tt.want)
		}
	}
}

func TestGame_Validate(t *testing.T) {
	tests := []struct {
		name    string
		game    Game
		wantErr bool
	}{
		{"valid", Game{Name: "Hades", Quantity: 1}, false},
		{"zero quantity", Game{Name: "Hades"}, false},
		{"blank name", Game{Name: "   "}, true},
		{"negative quantity", Game{Name: "Hades", Quantity: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.game.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestGame_Matches(t *testing.T) {
	g := Game{Name: "Hollow Knight", Platform: "Switch"}
	for query, want := range map[string]bool{
		"":        true,
		"hollow":  true,
		"KNIGHT":  true,
		"switch":  true,
		"celeste": false,
	} {
		if got := g.Matches(query); got != want {
			t.Errorf("Matches(%q) = %v, want %v", query, got, want)
		}
	}
}
