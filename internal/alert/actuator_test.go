package alert

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

type fakePlayback struct {
	player *fakePlayer
	done   chan struct{}
	once   sync.Once
}

func (p *fakePlayback) Done() <-chan struct{} { return p.done }

func (p *fakePlayback) Stop() error {
	p.once.Do(func() {
		p.player.mu.Lock()
		p.player.active--
		p.player.mu.Unlock()
	})

	return nil
}

// finish ends playback as if the sound ran out.
func (p *fakePlayback) finish() { close(p.done) }

type fakePlayer struct {
	mu        sync.Mutex
	active    int
	sources   []string
	playbacks []*fakePlayback
	panics    bool
	// dies makes every playback end as soon as it starts.
	dies bool
}

func (f *fakePlayer) Play(_ context.Context, source string, _ float64) (Playback, error) {
	if f.panics {
		panic("media backend crashed")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p := &fakePlayback{player: f, done: make(chan struct{})}
	if f.dies {
		p.finish()
	}

	f.active++
	f.sources = append(f.sources, source)
	f.playbacks = append(f.playbacks, p)

	return p, nil
}

func (f *fakePlayer) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.active
}

type fakeTones struct {
	mu          sync.Mutex
	frequencies []float64
}

func (f *fakeTones) Tone(_ context.Context, frequency float64, _ time.Duration, _ float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.frequencies = append(f.frequencies, frequency)

	return nil
}

func (f *fakeTones) played() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]float64(nil), f.frequencies...)
}

type fakeVibrator struct {
	mu       sync.Mutex
	pulses   int
	canceled int
}

func (f *fakeVibrator) Vibrate(context.Context, time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pulses++

	return nil
}

func (f *fakeVibrator) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.canceled++

	return nil
}

type fakeTorch struct {
	mu       sync.Mutex
	switches int
	on       bool
}

func (f *fakeTorch) SetTorch(_ context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.switches++
	f.on = on

	return nil
}

type fakeWake struct {
	mu       sync.Mutex
	held     int
	ceilings []time.Duration
}

func (f *fakeWake) Acquire(_ context.Context, ceiling time.Duration) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.held++
	f.ceilings = append(f.ceilings, ceiling)

	var once sync.Once

	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.held--
			f.mu.Unlock()
		})
	}, nil
}

func (f *fakeWake) holding() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.held
}

type fixture struct {
	player   *fakePlayer
	tones    *fakeTones
	vibrator *fakeVibrator
	torch    *fakeTorch
	wake     *fakeWake
	actuator *Actuator
}

func newFixture(settings domain.AlertSettings) *fixture {
	f := &fixture{
		player:   &fakePlayer{},
		tones:    &fakeTones{},
		vibrator: &fakeVibrator{},
		torch:    &fakeTorch{},
		wake:     &fakeWake{},
	}
	f.actuator = NewActuator(StaticSettings(settings), Devices{
		Player:          f.player,
		Tones:           f.tones,
		Vibrator:        f.vibrator,
		Torch:           f.torch,
		WakeLock:        f.wake,
		DefaultRingtone: "/sounds/default.oga",
	}, nil)

	return f
}

func defaultSettings() domain.AlertSettings {
	return domain.AlertSettings{
		Voice:           domain.VoiceRingtone,
		VolumePercent:   100,
		AutoStop:        30 * time.Second,
		PreviewDuration: 5 * time.Second,
		RingtoneSource:  domain.RingtoneSourcePhone,
		WakeCeiling:     time.Minute,
	}
}

func TestActuator_TriggerTwiceKeepsOneVoice(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		f := newFixture(defaultSettings())

		first := f.actuator.Trigger(ctx, Request{Voice: domain.VoiceSiren, Preview: true})
		second := f.actuator.Trigger(ctx, Request{Voice: domain.VoiceSiren, Preview: true})
		synctest.Wait()

		require.NotEqual(t, first.SessionID, second.SessionID)
		require.Equal(t, int32(1), f.actuator.liveTasks.Load())
		require.True(t, f.actuator.IsPlaying())
		require.Equal(t, domain.VoiceSiren, f.actuator.State().Snapshot().Voice)
		require.Equal(t, 1, f.wake.holding())

		f.actuator.Stop(ctx)

		require.Zero(t, f.actuator.liveTasks.Load())
		require.False(t, f.actuator.IsPlaying())
		require.Zero(t, f.wake.holding())
	})
}

func TestActuator_RetriggerStopsPreviousRingtone(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		f := newFixture(defaultSettings())

		f.actuator.Trigger(ctx, Request{})
		f.actuator.Trigger(ctx, Request{})

		require.Equal(t, 1, f.player.activeCount())
		require.Len(t, f.player.sources, 2)
		require.Equal(t, "/sounds/default.oga", f.player.sources[0])

		f.actuator.Stop(ctx)
		require.Zero(t, f.player.activeCount())
	})
}

func TestActuator_StopWhenIdle(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		f := newFixture(defaultSettings())

		require.NotPanics(t, func() {
			f.actuator.Stop(ctx)
			f.actuator.Stop(ctx)
		})
		require.Equal(t, domain.AlertStatus{}, f.actuator.State().Snapshot())
	})
}

func TestActuator_AutoStop(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		f := newFixture(defaultSettings())

		status := f.actuator.Trigger(ctx, Request{Voice: domain.VoiceBeep, Duration: 100 * time.Millisecond})
		require.True(t, status.Playing)
		require.Equal(t, status.StartedAt.Add(100*time.Millisecond), status.Deadline)

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.False(t, f.actuator.IsPlaying())
		require.Zero(t, f.actuator.liveTasks.Load())
		require.Zero(t, f.wake.holding())
		require.NotEmpty(t, f.tones.played())
	})
}

func TestActuator_StaleTimerIgnored(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		f := newFixture(defaultSettings())

		f.actuator.Trigger(ctx, Request{Voice: domain.VoiceBeep, Duration: 100 * time.Millisecond})
		time.Sleep(50 * time.Millisecond)
		f.actuator.Trigger(ctx, Request{Voice: domain.VoiceBeep, Duration: time.Second})

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		require.True(t, f.actuator.IsPlaying())

		time.Sleep(time.Second)
		synctest.Wait()
		require.False(t, f.actuator.IsPlaying())
	})
}

func TestActuator_PreviewSuppressesSideChannels(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		settings := defaultSettings()
		settings.Vibrate = true
		settings.Strobe = true
		f := newFixture(settings)

		status := f.actuator.Trigger(ctx, Request{Voice: domain.VoiceSiren, Preview: true})
		time.Sleep(time.Second)
		synctest.Wait()

		require.True(t, status.Playing)
		require.True(t, status.Preview)
		require.False(t, status.Vibrating)
		require.False(t, status.Strobing)
		require.Zero(t, f.vibrator.pulses)
		require.Zero(t, f.torch.switches)

		// The preview ends at the configured preview duration.
		require.Equal(t, status.StartedAt.Add(5*time.Second), status.Deadline)

		status = f.actuator.Trigger(ctx, Request{Voice: domain.VoiceSiren})
		time.Sleep(2 * time.Second)
		synctest.Wait()

		require.True(t, status.Vibrating)
		require.True(t, status.Strobing)
		require.Equal(t, int32(3), f.actuator.liveTasks.Load())

		f.actuator.Stop(ctx)

		require.Zero(t, f.actuator.liveTasks.Load())
		require.Positive(t, f.vibrator.pulses)
		require.Equal(t, 1, f.vibrator.canceled)
		require.Positive(t, f.torch.switches)
		require.False(t, f.torch.on)
	})
}

func TestActuator_SirenAlternates(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		f := newFixture(defaultSettings())

		f.actuator.Trigger(ctx, Request{Voice: domain.VoiceSiren})
		time.Sleep(1000 * time.Millisecond)
		synctest.Wait()
		f.actuator.Stop(ctx)

		played := f.tones.played()
		require.GreaterOrEqual(t, len(played), 3)
		require.InDelta(t, 960, played[0], 0)
		require.InDelta(t, 770, played[1], 0)
		require.InDelta(t, 960, played[2], 0)
	})
}

func TestActuator_RingtoneCompletion(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		settings := defaultSettings()
		settings.Vibrate = true
		f := newFixture(settings)

		status := f.actuator.Trigger(ctx, Request{Duration: 5 * time.Second})
		require.True(t, status.Vibrating)

		time.Sleep(2 * time.Second)
		f.player.playbacks[0].finish()
		synctest.Wait()

		require.False(t, f.actuator.IsPlaying())
		require.False(t, f.actuator.State().Snapshot().Vibrating)
		require.Zero(t, f.actuator.liveTasks.Load())
		require.Zero(t, f.wake.holding())

		// The armed timer fires into an idle actuator.
		time.Sleep(4 * time.Second)
		synctest.Wait()
		require.Equal(t, domain.AlertStatus{}, f.actuator.State().Snapshot())
	})
}

func TestActuator_CustomRingtone(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		settings := defaultSettings()
		settings.RingtoneSource = domain.RingtoneSourceCustom
		settings.RingtonePath = "/home/user/loud.ogg"
		f := newFixture(settings)

		f.actuator.Trigger(ctx, Request{})
		f.actuator.Stop(ctx)

		require.Equal(t, []string{"/home/user/loud.ogg"}, f.player.sources)
	})
}

func TestActuator_RingtoneFallsBackToBeep(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		f := newFixture(defaultSettings())
		f.player.panics = true

		status := f.actuator.Trigger(ctx, Request{})
		time.Sleep(time.Second)
		synctest.Wait()

		require.True(t, status.Playing)
		require.Equal(t, domain.VoiceBeep, status.Voice)
		require.InDelta(t, 1000, f.tones.played()[0], 0)

		f.actuator.Stop(ctx)
	})
}

func TestActuator_RingtoneDiesAtStart(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		settings := defaultSettings()
		settings.Vibrate = true
		f := newFixture(settings)
		f.player.dies = true

		f.actuator.Trigger(ctx, Request{})
		time.Sleep(time.Second)
		synctest.Wait()

		status := f.actuator.State().Snapshot()
		require.True(t, status.Playing)
		require.True(t, status.Vibrating)
		require.Equal(t, domain.VoiceBeep, status.Voice)
		require.NotEmpty(t, f.tones.played())
		require.InDelta(t, 1000, f.tones.played()[0], 0)
		require.Zero(t, f.player.activeCount())
		require.Equal(t, 1, f.wake.holding())
		require.Equal(t, int32(2), f.actuator.liveTasks.Load())

		f.actuator.Stop(ctx)
		require.False(t, f.actuator.IsPlaying())
		require.Zero(t, f.actuator.liveTasks.Load())
	})
}

func TestActuator_NoVoiceAvailable(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := t.Context()
		wake := &fakeWake{}
		actuator := NewActuator(StaticSettings(defaultSettings()), Devices{WakeLock: wake}, nil)

		status := actuator.Trigger(ctx, Request{Voice: domain.VoiceSiren})

		require.Equal(t, domain.AlertStatus{}, status)
		require.False(t, actuator.IsPlaying())
		require.Zero(t, wake.holding())
		require.Equal(t, []time.Duration{time.Minute}, wake.ceilings)
	})
}

func TestState_Subscribe(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		f := newFixture(defaultSettings())

		updates := f.actuator.State().Subscribe(ctx)
		require.Equal(t, domain.AlertStatus{}, <-updates)

		status := f.actuator.Trigger(ctx, Request{Voice: domain.VoiceBeep})
		require.Equal(t, status, <-updates)

		f.actuator.Stop(ctx)
		require.Equal(t, domain.AlertStatus{}, <-updates)

		cancel()
		synctest.Wait()

		_, ok := <-updates
		require.False(t, ok)
	})
}
