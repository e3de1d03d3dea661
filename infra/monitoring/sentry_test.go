package monitoring

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/roomload/config"
	coremon "github.com/kilianp07/roomload/core/monitoring"
)

func TestNewSentryMonitorDisabled(t *testing.T) {
	mon, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, mon)
}

func TestNewSentryMonitorBadDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestSentryMonitorSendsEvents(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dsn := strings.Replace(srv.URL, "http://", "http://public@", 1) + "/42"
	mon, err := NewSentryMonitor(config.SentryConfig{DSN: dsn, Environment: "test"})
	require.NoError(t, err)

	mon.CaptureException(nil, nil)
	mon.CaptureException(errors.New("room 17 failed"), map[string]string{"room_id": "17"})
	require.True(t, mon.Flush(5*time.Second))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "room 17 failed")
	assert.Contains(t, bodies[0], `"room_id":"17"`)
}
