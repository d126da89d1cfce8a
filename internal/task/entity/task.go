package entity

import "time"

// Type classifies a mission.
type Type string

const (
	TypeTask     Type = "task"
	TypeGoal     Type = "goal"
	TypeActivity Type = "activity"
	TypeDaily    Type = "daily"
)

// IsValid checks the type against the known set.
func (t Type) IsValid() bool {
	switch t {
	case TypeTask, TypeGoal, TypeActivity, TypeDaily:
		return true
	}
	return false
}

// Difficulty is a display-level grading; the XP reward is set explicitly per task.
type Difficulty string

const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyExtreme Difficulty = "extreme"
)

// IsValid checks the difficulty against the known set.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme:
		return true
	}
	return false
}

// Task is a mission row in the `tasks` table, owned exclusively by one user.
// `completed` transitions false -> true at most once; `completedAt` is set
// exactly then.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Name        string     `json:"name"`
	Type        Type       `json:"type"`
	Difficulty  Difficulty `json:"difficulty"`
	XPReward    int        `json:"xpReward"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
