package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Asami3315/Emergency-Ringer/internal/config"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/service/common"
	"github.com/Asami3315/Emergency-Ringer/internal/service/server"
)

// daemon describes a ringer-server started for a test.
type daemon struct {
	addr         string
	configPath   string
	contactsPath string
}

// reservePort returns a free local TCP address.
func reservePort(t *testing.T) string {
	t.Helper()

	lc := net.ListenConfig{}

	l, err := lc.Listen(t.Context(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// startServer runs the real daemon with a temporary config and no desktop
// feed. The alert plays silently so tests never make noise.
func startServer(t *testing.T) *daemon {
	t.Helper()

	dir := t.TempDir()
	d := &daemon{
		addr:         reservePort(t),
		configPath:   filepath.Join(dir, "settings.yaml"),
		contactsPath: filepath.Join(dir, "contacts.json"),
	}

	require.NoError(
		t,
		config.Save(d.configPath, &config.Config{
			ServerAddress: d.addr,
			ContactsFile:  d.contactsPath,
			LogLevel:      "error",
			Timeout:       3 * time.Second,
			Alert: domain.AlertSettings{
				Voice:         domain.VoiceBeep,
				VolumePercent: 0,
				AutoStop:      time.Minute,
			},
			Desktop: config.Desktop{Player: "true"},
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath: d.configPath,
			NoDBus:     true,
		})
	}()

	t.Cleanup(func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	// Wait until the control plane answers.
	c := dial(t, d.addr)
	require.Eventually(t, func() bool {
		_, err := c.Status(t.Context())
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	return d
}

// dial connects a client that is closed when the test ends.
func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	c, err := common.Dial(t.Context(), addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}
