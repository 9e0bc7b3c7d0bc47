package cmd

import (
	"expvar"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor(t *testing.T) {
	assert := assert.New(t)

	mon := &monitor{addr: "127.0.0.1:0", log: slog.New(slog.DiscardHandler)}
	require.NoError(t, mon.Start())
	defer mon.Stop()

	mon.Iterations.Set(300)
	mon.AcceptRate.Set(0.42)

	published, ok := expvar.Get("amwg-progress").(*expvar.Map)
	require.True(t, ok)
	assert.Equal("300", published.Get("Iterations").String())
	assert.Equal("0.42", published.Get("Accept-Rate").String())

	assert.Error(mon.Start())

	// Stopping a monitor that never started is fine
	(&monitor{}).Stop()
}
