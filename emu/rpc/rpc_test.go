package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcecd/emu"
	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
)

func startServer(t *testing.T, bus Bus) *Client {
	t.Helper()
	log.Disable()

	srv, err := NewServer(UnusedPort(), bus)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	client, err := NewClient(srv.Port)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRemoteBus(t *testing.T) {
	console := emu.NewConsole(hwdefs.CdRomSuper, nil)
	client := startServer(t, console)

	sig, err := client.Read8(0x18C1)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAA), sig)

	require.NoError(t, client.Write8(0x1807, 0x80))
	bram, err := client.Peek8(0x1807)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), bram)

	require.NoError(t, client.Write8(0x1802, uint8(hwdefs.CdIrqSubCode)))
	require.NoError(t, client.SetIrqSource(hwdefs.CdIrqSubCode))
	pending, err := client.IrqPending()
	require.NoError(t, err)
	assert.True(t, pending)

	require.NoError(t, client.ClearIrqSource(hwdefs.CdIrqSubCode))
	pending, err = client.IrqPending()
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, client.Step(10))
}

func TestRemoteSaveState(t *testing.T) {
	console := emu.NewConsole(hwdefs.CdRomSuper, nil)
	client := startServer(t, console)

	require.NoError(t, client.Write8(0x1807, 0x80))
	state, err := client.SaveState()
	require.NoError(t, err)
	assert.Equal(t, console.SaveState(), state)

	// Locks BRAM.
	_, err = client.Read8(0x1803)
	require.NoError(t, err)

	require.NoError(t, client.LoadState(state))
	assert.Equal(t, uint8(0x80), console.Peek8(0x1807))

	assert.Error(t, client.LoadState([]byte("{}")))
}
