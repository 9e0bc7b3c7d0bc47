package cmd

import (
	"expvar"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// monitor publishes chain progress over HTTP via expvar
type monitor struct {
	addr    string
	log     *slog.Logger
	info    *expvar.Map
	stopped chan struct{}
	server  *http.Server

	BurnIn     *expvar.Int
	Samples    *expvar.Int
	Window     *expvar.Int
	Iterations *expvar.Int
	RunTime    *expvar.Float
	AcceptRate *expvar.Float // mean over every coordinate
	Adapting   *expvar.Int   // 1 during burn in
}

// Start begins the monitor
func (m *monitor) Start() error {
	if m.info != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	// expvar names are process wide
	if existing, ok := expvar.Get("amwg-progress").(*expvar.Map); ok {
		m.info = existing
	} else {
		m.info = expvar.NewMap("amwg-progress")
	}
	m.stopped = make(chan struct{})

	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})
	m.server = &http.Server{
		Addr:              m.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	m.BurnIn = new(expvar.Int)
	m.Samples = new(expvar.Int)
	m.Window = new(expvar.Int)
	m.Iterations = new(expvar.Int)
	m.RunTime = new(expvar.Float)
	m.AcceptRate = new(expvar.Float)
	m.Adapting = new(expvar.Int)

	m.info.Set("Burn-In", m.BurnIn)
	m.info.Set("Samples", m.Samples)
	m.info.Set("Window", m.Window)
	m.info.Set("Iterations", m.Iterations)
	m.info.Set("Run-Time", m.RunTime)
	m.info.Set("Accept-Rate", m.AcceptRate)
	m.info.Set("Adapting", m.Adapting)

	// Actual server that will close the stopped channel on exit
	started := make(chan struct{})
	go func() {
		defer close(m.stopped)
		m.log.Info("HTTP monitor available", "addr", m.server.Addr, "path", "/debug/vars")
		close(started)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error("HTTP monitor failed", "err", err)
		}
	}()

	<-started
	return nil
}

// Stop shuts the server down, waiting briefly for it to exit
func (m *monitor) Stop() {
	if m.info == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		m.log.Info("HTTP monitor stopped")
	case <-time.After(2 * time.Second):
		m.log.Warn("HTTP monitor would NOT stop: just continuing on")
	}
}
