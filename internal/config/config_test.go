package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"station/internal/practice"
)

func TestLoadReturnsDefaultWhenNoFileExists(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	doc, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), doc)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	doc := Default()
	doc.TeamNumber = 1234
	doc.UseUSB = true
	doc.GameData = "RBB"
	doc.JoystickLocks = map[string]int{"uuid-a": 2}

	require.NoError(t, Save(doc))

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestPracticeTimingRoundTripsThroughSeconds(t *testing.T) {
	timing := practice.Timing{
		Countdown:  3 * time.Second,
		Autonomous: 15 * time.Second,
		Delay:      1 * time.Second,
		Teleop:     135 * time.Second,
	}
	yamlTiming := PracticeTimingFromPractice(timing)
	assert.Equal(t, timing, yamlTiming.ToPractice())
}
