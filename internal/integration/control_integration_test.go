package integration

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/service/control"
)

// TestControl_Commands runs ringerctl operations end to end.
func TestControl_Commands(t *testing.T) {
	t.Parallel()

	d := startServer(t)
	out := new(bytes.Buffer)
	opts := &control.Options{ConfigPath: d.configPath, Out: out}
	ctx := t.Context()

	require.NoError(t, control.Run(ctx, opts, control.AddContact(domain.TrustedContact{Name: "Mom"})))
	require.NoError(t, control.Run(ctx, opts, control.ToggleMonitoring()))
	require.NoError(t, control.Run(ctx, opts, control.ListContacts()))

	require.Equal(t, "Contact added: Mom\nMonitoring: off\nMonitoring: off\n  Mom\n", out.String())

	out.Reset()
	require.NoError(t, control.Run(ctx, opts, control.Status()))
	require.Contains(t, out.String(), "Alert:      idle\n")
	require.Contains(t, out.String(), "Feed:       grpc connected\n")
}
