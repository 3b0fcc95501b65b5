package sink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsoleSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)

	require.NoError(t, s.Write([]byte("TRADE 50")))
	require.NoError(t, s.Write([]byte("")))
	require.NoError(t, s.Close())

	require.Equal(t, "TRADE 50\n\n", buf.String())
}
