package desktop

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

const (
	// paplayFullVolume is the paplay volume of an unscaled sample.
	paplayFullVolume = 65536
	// playStartGrace is how long Play waits for the player to fail.
	playStartGrace = 200 * time.Millisecond
)

// Player plays sound files with a paplay compatible command in a loop.
type Player struct {
	runner  Runner
	command string
}

// NewPlayer creates a player that runs command. A nil runner uses os/exec.
func NewPlayer(runner Runner, command string) *Player {
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Player{
		runner:  runner,
		command: command,
	}
}

// Play implements alert.MediaPlayer. It fails when the player is missing
// or exits with an error within playStartGrace.
func (p *Player) Play(ctx context.Context, source string, volume float64) (alert.Playback, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("ringtone unavailable: %w", err)
	}

	if err := p.runner.LookPath(p.command); err != nil {
		return nil, fmt.Errorf("ringtone player unavailable: %w", err)
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	playback := &playback{
		cancel: cancel,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	level := strconv.Itoa(int(volume * paplayFullVolume))
	failed := make(chan error, 1)

	go func() {
		defer close(playback.exited)

		for ctx.Err() == nil {
			err := p.runner.Run(ctx, p.command, "--volume="+level, source)
			if err != nil && ctx.Err() == nil {
				logger.Warnf(ctx, "ringtone playback ended: %v", err)

				failed <- err

				playback.finish()

				return
			}
		}
	}()

	timer := time.NewTimer(playStartGrace)
	defer timer.Stop()

	select {
	case err := <-failed:
		_ = playback.Stop()

		return nil, fmt.Errorf("start ringtone: %w", err)
	case <-timer.C:
		return playback, nil
	}
}

type playback struct {
	cancel context.CancelFunc
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

func (p *playback) Done() <-chan struct{} {
	return p.done
}

func (p *playback) finish() {
	p.once.Do(func() {
		close(p.done)
	})
}

func (p *playback) Stop() error {
	p.cancel()
	<-p.exited

	return nil
}
