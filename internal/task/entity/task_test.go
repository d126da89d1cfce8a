package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeIsValid(t *testing.T) {
	for _, typ := range []Type{TypeTask, TypeGoal, TypeActivity, TypeDaily} {
		require.True(t, typ.IsValid(), "type %q", typ)
	}
	require.False(t, Type("quest").IsValid())
	require.False(t, Type("").IsValid())
}

func TestDifficultyIsValid(t *testing.T) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme} {
		require.True(t, d.IsValid(), "difficulty %q", d)
	}
	require.False(t, Difficulty("epic").IsValid())
	require.False(t, Difficulty("").IsValid())
}
