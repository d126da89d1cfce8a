package task

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZINSTEM/SoloGym/internal/task/entity"
)

func TestCreateInputDefaults(t *testing.T) {
	in := CreateInput{Name: "morning run", XPReward: 25}
	require.NoError(t, in.normalize())

	require.Equal(t, entity.TypeTask, in.Type)
	require.Equal(t, entity.DifficultyMedium, in.Difficulty)
}

func TestCreateInputRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{XPReward: 10}},
		{"unknown type", CreateInput{Name: "x", Type: "quest"}},
		{"unknown difficulty", CreateInput{Name: "x", Difficulty: "epic"}},
		{"negative reward", CreateInput{Name: "x", XPReward: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.in.normalize(), ErrInvalidInput)
		})
	}
}
