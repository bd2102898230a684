package progress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateAttemptPassIsScoreAgainstBar(t *testing.T) {
	outcome, err := EvaluateAttempt(70, 70, 1, nil)
	require.NoError(t, err)
	require.True(t, outcome.Passed)

	outcome, err = EvaluateAttempt(69.9, 70, 1, nil)
	require.NoError(t, err)
	require.False(t, outcome.Passed)
}

func TestEvaluateAttemptDefaultPassingScore(t *testing.T) {
	outcome, err := EvaluateAttempt(75, 0, 1, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultPassingScore, outcome.PassingScore)
	require.True(t, outcome.Passed)

	outcome, err = EvaluateAttempt(65, 0, 1, nil)
	require.NoError(t, err)
	require.False(t, outcome.Passed)
}

func TestEvaluateAttemptEnforcesCap(t *testing.T) {
	maxAttempts := 2

	_, err := EvaluateAttempt(90, 70, 2, &maxAttempts)
	require.NoError(t, err)

	_, err = EvaluateAttempt(90, 70, 3, &maxAttempts)
	require.ErrorIs(t, err, ErrAttemptsExhausted)
}

func TestEvaluateAttemptRejectsInvalidAttemptNumber(t *testing.T) {
	_, err := EvaluateAttempt(90, 70, 0, nil)
	require.Error(t, err)
}
