package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConsoleRendersPercent verifies label and percentage output.
func TestConsoleRendersPercent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sink := NewConsole(&buf)
	sink.Start("Downloading test.tar.gz", 200)
	sink.Advance(100)
	sink.Advance(100)
	sink.Finish()

	out := buf.String()
	require.Contains(t, out, "Downloading test.tar.gz")
	require.Contains(t, out, " 50%")
	require.Contains(t, out, "100%")
}

// TestConsoleUnknownTotal verifies byte-only rendering when the total is unknown.
func TestConsoleUnknownTotal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sink := NewConsole(&buf)
	sink.Start("Extracting", 0)
	sink.Advance(2048)
	sink.Finish()

	require.Contains(t, buf.String(), "2.0 KiB")
}

// TestFormatBytes covers the unit boundaries.
func TestFormatBytes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "512 B", formatBytes(512))
	require.Equal(t, "1.0 KiB", formatBytes(1024))
	require.Equal(t, "1.5 MiB", formatBytes(3*1024*1024/2))
}
