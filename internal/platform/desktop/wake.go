package desktop

import (
	"context"
	"strconv"
	"time"

	"github.com/Asami3315/Emergency-Ringer/internal/logger"
)

const inhibitCommand = "systemd-inhibit"

// Inhibitor holds a systemd sleep and idle inhibitor lock.
type Inhibitor struct {
	runner Runner
}

// NewInhibitor creates the wake lock. A nil runner uses os/exec.
func NewInhibitor(runner Runner) *Inhibitor {
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Inhibitor{runner: runner}
}

// Acquire implements alert.WakeLock. The lock ends by itself after ceiling.
func (i *Inhibitor) Acquire(ctx context.Context, ceiling time.Duration) (func(), error) {
	seconds := max(int(ceiling.Round(time.Second)/time.Second), 1)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ceiling)
	done := make(chan struct{})

	go func() {
		defer close(done)

		err := i.runner.Run(ctx, inhibitCommand,
			"--what=sleep:idle",
			"--who="+appName,
			"--why=Emergency call alert",
			"--mode=block",
			"sleep", strconv.Itoa(seconds),
		)
		if err != nil && ctx.Err() == nil {
			logger.Warnf(ctx, "wake lock ended: %v", err)
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}
