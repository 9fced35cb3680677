package library

import (
	"strings"
	"time"

	"github.com/Iron-Ham/gamedex/internal/errors"
)

// Game is one catalog entry. ID is the identity: two values with the same ID
// are versions of the same game.
type Game struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Platform string    `yaml:"platform,omitempty"`
	Quantity int       `yaml:"quantity"`
	Added    time.Time `yaml:"added"`
}

// SameGame reports whether a and b have the same identity.
func SameGame(a, b Game) bool {
	return a.ID == b.ID
}

// Validate checks the fields a user can edit.
func (g Game) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.NewValidationError("name must not be empty").WithField("name").WithValue(g.Name)
	}
	if g.Quantity < 0 {
		return errors.NewValidationError("quantity must be non-negative").WithField("quantity").WithValue(g.Quantity)
	}
	return nil
}

// Matches reports whether the name or platform contains query, ignoring case.
// An empty query matches every game.
func (g Game) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(g.Name), query) ||
		strings.Contains(strings.ToLower(g.Platform), query)
}

// RoundUpToPack rounds quantity up to the next multiple of pack. Negative
// quantities become 0; a pack below 1 leaves quantity unchanged.
func RoundUpToPack(quantity, pack int) int {
	if quantity <= 0 {
		return 0
	}
	if pack < 1 {
		return quantity
	}
	return (quantity + pack - 1) / pack * pack
}
