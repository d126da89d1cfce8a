package entity

import "time"

// Attributes are the four trainable stats a hunter spends points on.
type Attributes struct {
	Strength  int `json:"strength"`
	Endurance int `json:"endurance"`
	Agility   int `json:"agility"`
	Vitality  int `json:"vitality"`
}

// Total returns the sum of all four stats.
func (a Attributes) Total() int {
	return a.Strength + a.Endurance + a.Agility + a.Vitality
}

// AttributeDelta is a point-spend request. Components default to zero.
type AttributeDelta struct {
	Strength  int `json:"strength"`
	Endurance int `json:"endurance"`
	Agility   int `json:"agility"`
	Vitality  int `json:"vitality"`
}

// Total returns the number of points the delta would spend.
func (d AttributeDelta) Total() int {
	return d.Strength + d.Endurance + d.Agility + d.Vitality
}

// HasNegative reports whether any component is below zero. Negative components
// would let a caller refund points into available_points, so they are rejected.
func (d AttributeDelta) HasNegative() bool {
	return d.Strength < 0 || d.Endurance < 0 || d.Agility < 0 || d.Vitality < 0
}

// User is an account row in the `users` table. At rest XP < XPToNextLevel;
// the threshold for the next level is floor(100 * 1.5^level).
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	DisplayName     string     `json:"displayName"`
	Level           int        `json:"level"`
	XP              int        `json:"xp"`
	XPToNextLevel   int        `json:"xpToNextLevel"`
	Attributes      Attributes `json:"attributes"`
	AvailablePoints int        `json:"availablePoints"`
	Badges          []string   `json:"badges"`
	Version         int64      `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// HasBadge reports whether the badge is already present.
func (u *User) HasBadge(id string) bool {
	for _, b := range u.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// AttributeSnapshot is one immutable attribute_history row, captured after every
// successful allocation so weekly deltas can be reconstructed.
type AttributeSnapshot struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	Strength   int       `json:"strength"`
	Endurance  int       `json:"endurance"`
	Agility    int       `json:"agility"`
	Vitality   int       `json:"vitality"`
	RecordedAt time.Time `json:"recordedAt"`
}
