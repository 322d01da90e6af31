package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tier is a customer's loyalty category. The tier determines the discount
// rate applied at checkout; rates live in configuration, not here.
type Tier string

const (
	TierRegular Tier = "Regular"
	TierStudent Tier = "Student"
	TierVIP     Tier = "VIP"
)

// tierRanks orders tiers so that upgrades only ever move upward.
var tierRanks = map[Tier]int{
	TierRegular: 0,
	TierStudent: 1,
	TierVIP:     2,
}

// ParseTier converts a string into a Tier, rejecting unknown values.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown loyalty tier: %q", s)
	}
	return t, nil
}

// Valid reports whether the tier is one of the known loyalty categories.
func (t Tier) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

// Above reports whether t outranks other.
func (t Tier) Above(other Tier) bool {
	return tierRanks[t] > tierRanks[other]
}

// Customer represents a registered customer with accumulated loyalty points.
// Points only ever increase through purchases.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Tier      Tier      `json:"tier" db:"tier"`
	Points    int       `json:"points" db:"points"`
	Phone     string    `json:"phone" db:"phone"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
