package progression

import "math"

const (
	// XPBase is the level-1 threshold; each successive level multiplies by XPGrowth.
	XPBase = 100.0

	// XPGrowth is the per-level multiplier of the threshold curve.
	XPGrowth = 1.5

	// PointsPerLevel is how many attribute points each level-up grants.
	PointsPerLevel = 3
)

// XPForLevel returns the XP needed to reach the given level from the one below:
// floor(100 * 1.5^(level-1)). Levels below 1 are clamped to level 1.
func XPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(XPBase * math.Pow(XPGrowth, float64(level-1))))
}

// Snapshot is a user's leveling state. At rest XP < XPToNextLevel.
type Snapshot struct {
	XP            int
	Level         int
	XPToNextLevel int
}

// Outcome is the result of applying gained XP to a snapshot.
type Outcome struct {
	Snapshot
	LeveledUp     bool
	LevelsGained  int
	PointsGranted int
}

// Advance applies gained XP to a snapshot and resolves every level-up it pays
// for. Reaching the threshold exactly levels up. After reaching level L the
// stored threshold becomes XPForLevel(L+1) = floor(100*1.5^L); do not fold the
// exponent, the off-by-one is load-bearing for the whole difficulty curve.
// Runs in O(levels gained); the threshold is always positive so the loop
// strictly consumes XP.
func Advance(s Snapshot, xpGained int) Outcome {
	if xpGained < 0 {
		xpGained = 0
	}
	out := Outcome{Snapshot: s}
	out.XP += xpGained
	for out.XP >= out.XPToNextLevel {
		out.XP -= out.XPToNextLevel
		out.Level++
		out.PointsGranted += PointsPerLevel
		out.XPToNextLevel = XPForLevel(out.Level + 1)
		out.LevelsGained++
	}
	out.LeveledUp = out.LevelsGained > 0
	return out
}
