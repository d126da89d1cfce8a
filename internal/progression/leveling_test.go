package progression

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXPForLevelCurve(t *testing.T) {
	require.Equal(t, 100, XPForLevel(1))
	require.Equal(t, 150, XPForLevel(2))
	require.Equal(t, 225, XPForLevel(3))
	require.Equal(t, 337, XPForLevel(4))

	// levels below 1 clamp to the level-1 threshold
	require.Equal(t, 100, XPForLevel(0))
	require.Equal(t, 100, XPForLevel(-3))
}

func TestXPForLevelMonotonic(t *testing.T) {
	for level := 1; level < 60; level++ {
		require.GreaterOrEqual(t, XPForLevel(level+1), XPForLevel(level),
			"difficulty curve must not decrease at level %d", level)
	}
}

func TestAdvanceZeroGainIsNoOp(t *testing.T) {
	s := Snapshot{XP: 40, Level: 2, XPToNextLevel: 150}
	out := Advance(s, 0)

	require.False(t, out.LeveledUp)
	require.Equal(t, 0, out.PointsGranted)
	require.Equal(t, s, out.Snapshot)
}

func TestAdvanceSingleLevelUp(t *testing.T) {
	out := Advance(Snapshot{XP: 90, Level: 1, XPToNextLevel: 100}, 30)

	require.True(t, out.LeveledUp)
	require.Equal(t, 20, out.XP)
	require.Equal(t, 2, out.Level)
	require.Equal(t, 225, out.XPToNextLevel, "threshold after reaching level 2 is XPForLevel(3)")
	require.Equal(t, 3, out.PointsGranted)
	require.Equal(t, 1, out.LevelsGained)
}

func TestAdvanceExactThresholdLevelsUp(t *testing.T) {
	out := Advance(Snapshot{XP: 0, Level: 1, XPToNextLevel: 100}, 100)

	require.True(t, out.LeveledUp)
	require.Equal(t, 0, out.XP)
	require.Equal(t, 2, out.Level)
}

func TestAdvanceResolvesMultipleLevels(t *testing.T) {
	out := Advance(Snapshot{XP: 0, Level: 1, XPToNextLevel: 100}, 350)

	// 350 pays for level 2 (100) and level 3 (225), leaving 25
	require.True(t, out.LeveledUp)
	require.Equal(t, 3, out.Level)
	require.Equal(t, 25, out.XP)
	require.Equal(t, 337, out.XPToNextLevel)
	require.Equal(t, 2, out.LevelsGained)
	require.Equal(t, 6, out.PointsGranted)
}

func TestAdvanceLargeGainTerminates(t *testing.T) {
	out := Advance(Snapshot{XP: 0, Level: 1, XPToNextLevel: 100}, 10_000_000)

	require.True(t, out.LeveledUp)
	require.Less(t, out.XP, out.XPToNextLevel, "resting state must satisfy xp < xpToNextLevel")
	require.Greater(t, out.Level, 10)
	require.Equal(t, out.LevelsGained*PointsPerLevel, out.PointsGranted)
}
