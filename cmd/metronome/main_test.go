package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestHeadlessRunWritesRecordings(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "click.wav")
	midiPath := filepath.Join(dir, "click.mid")
	snapDir := filepath.Join(dir, "snaps")

	err := newApp().Run([]string{"metronome",
		"--backend", "headless",
		"--duration", "3s",
		"--tempo", "120",
		"--timesig", "3/8",
		"--wav", wavPath,
		"--midi", midiPath,
		"--snapshot-interval", "50",
		"--snapshot-dir", snapDir,
		"--log-level", "warn",
	})
	require.NoError(t, err)

	info, err := os.Stat(wavPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(44))

	s, err := smf.ReadFile(midiPath)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Tracks)

	snaps, err := filepath.Glob(filepath.Join(snapDir, "*.png"))
	require.NoError(t, err)
	assert.NotEmpty(t, snaps)
}

func TestRunRejectsBadFlags(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"tempo out of range", []string{"--tempo", "300", "--backend", "headless", "--duration", "1s"}},
		{"unknown signature", []string{"--timesig", "7/8", "--backend", "headless", "--duration", "1s"}},
		{"unknown backend", []string{"--backend", "gtk"}},
		{"headless without duration", []string{"--backend", "headless"}},
		{"bad log level", []string{"--log-level", "loud", "--backend", "headless", "--duration", "1s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := newApp().Run(append([]string{"metronome"}, tc.args...))
			assert.Error(t, err)
		})
	}
}

func TestConfigFileWithOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metronome.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tempo: 90\ntime_signature: 2/4\n"), 0o644))

	midiPath := filepath.Join(t.TempDir(), "out.mid")
	err := newApp().Run([]string{"metronome",
		"--config", path,
		"--tempo", "60",
		"--backend", "headless",
		"--duration", "2500ms",
		"--midi", midiPath,
		"--log-level", "error",
	})
	require.NoError(t, err)

	s, err := smf.ReadFile(midiPath)
	require.NoError(t, err)

	var meters int
	for _, ev := range s.Tracks[0] {
		var num, denom uint8
		if ev.Message.GetMetaMeter(&num, &denom) {
			meters++
			assert.Equal(t, uint8(2), num)
			assert.Equal(t, uint8(4), denom)
		}
	}
	assert.Equal(t, 1, meters)
}
