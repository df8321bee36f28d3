package wire

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(TypeNewTransaction, "127.0.0.1:9000", 123.456, map[string]string{"hello": "world"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteEnvelope(&buf, env))

	got, err := ReadEnvelope(&buf)
	require.NoError(t, err)
	assert.Equal(t, env.Type, got.Type)
	assert.Equal(t, env.Sender, got.Sender)
	assert.Equal(t, env.Timestamp, got.Timestamp)

	var payload map[string]string
	require.NoError(t, got.Decode(&payload))
	assert.Equal(t, "world", payload["hello"])
}

func TestReadEnvelopeRejectsMissingFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEnvelope(&buf, &Envelope{Type: "", Sender: "", Data: []byte("null")}))

	_, err := ReadEnvelope(&buf)
	assert.Error(t, err)
}

func TestLoadTopologyMissingFileYieldsEmptyNeighbors(t *testing.T) {
	topo, err := LoadTopology("/nonexistent/path/topology.dat")
	require.NoError(t, err)
	assert.Empty(t, topo.Neighbors("a:1"))
}

func TestLoadTopologyParsesAdjacencyLines(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/topology.dat"
	content := "a:1 -> b:2, c:3\n\nb:2 -> a:1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	topo, err := LoadTopology(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b:2", "c:3"}, topo.Neighbors("a:1"))
	assert.Equal(t, []string{"a:1"}, topo.Neighbors("b:2"))
	assert.Empty(t, topo.Neighbors("c:3"))
}
