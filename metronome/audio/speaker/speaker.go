package speaker

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays a PCM stream on the default audio device.
type Speaker struct {
	ctx    *oto.Context
	player *oto.Player
}

// Open starts playback of src, signed 16-bit little endian mono at
// sampleRate.
func Open(src io.Reader, sampleRate int) (*Speaker, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %v", err)
	}
	<-ready

	player := ctx.NewPlayer(src)
	// 2 bytes per sample, ~20ms keeps the click close to the LED
	player.SetBufferSize(sampleRate / 50 * 2)
	player.Play()

	slog.Info("Speaker started", "sample_rate", sampleRate)
	return &Speaker{ctx: ctx, player: player}, nil
}

func (s *Speaker) Close() error {
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}
