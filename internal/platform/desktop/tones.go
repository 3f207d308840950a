package desktop

import (
	"context"
	"time"

	"github.com/gen2brain/beeep"
)

// Tones generates tones through the PC speaker or console bell.
type Tones struct {
	beep func(frequency float64, milliseconds int) error
}

// NewTones creates the tone generator.
func NewTones() *Tones {
	return &Tones{beep: beeep.Beep}
}

// Tone implements alert.ToneGenerator. The speaker has a fixed level, so any
// non-zero volume plays at full loudness.
func (t *Tones) Tone(ctx context.Context, frequency float64, length time.Duration, volume float64) error {
	if volume <= 0 || ctx.Err() != nil {
		return nil
	}

	return t.beep(frequency, int(length/time.Millisecond))
}
