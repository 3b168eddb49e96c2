package adapters

import (
	"encoding/json"
	"net/http"
	"sync"

	"lightctl/application"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type MockDaemonParams struct {
	// InitialBrightness defaults to 100, matching a factory-fresh bulb.
	InitialBrightness int

	Log zerolog.Logger
}

// MockDaemon is an in-memory stand-in for the real control service, good
// enough for development and for exercising the HTTP gateway end to end.
// It mirrors the daemon's API surface: /health, /status, /on, /off,
// /toggle and /brightness, with the same error bodies.
type MockDaemon struct {
	mu         sync.Mutex
	power      application.PowerState
	brightness int
	connected  bool

	log zerolog.Logger
}

func NewMockDaemon(params MockDaemonParams) *MockDaemon {
	brightness := params.InitialBrightness
	if brightness == 0 {
		brightness = 100
	}
	return &MockDaemon{
		power:      application.PowerOff,
		brightness: brightness,
		connected:  true,
		log:        params.Log,
	}
}

// SetConnected simulates the daemon losing or regaining its link to the
// physical bulb. While disconnected, commands answer 503 the way the real
// daemon does when it cannot reach the bulb.
func (d *MockDaemon) SetConnected(connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = connected
}

func (d *MockDaemon) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", d.handleHealth)
	r.Get("/status", d.handleStatus)
	r.Post("/on", d.handleOn)
	r.Post("/off", d.handleOff)
	r.Post("/toggle", d.handleToggle)
	r.Post("/brightness", d.handleBrightness)
	return r
}

func (d *MockDaemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d *MockDaemon) handleStatus(w http.ResponseWriter, _ *http.Request) {
	d.mu.Lock()
	status := application.DeviceStatus{
		OK:         d.connected,
		Connected:  d.connected,
		Power:      d.power,
		Brightness: d.brightness,
	}
	if !d.connected {
		status.Power = ""
		status.Brightness = 0
		status.Error = "bulb not connected"
	}
	d.mu.Unlock()

	writeJSON(w, http.StatusOK, status)
}

func (d *MockDaemon) handleOn(w http.ResponseWriter, _ *http.Request) {
	d.setPower(w, application.PowerOn)
}

func (d *MockDaemon) handleOff(w http.ResponseWriter, _ *http.Request) {
	d.setPower(w, application.PowerOff)
}

func (d *MockDaemon) setPower(w http.ResponseWriter, power application.PowerState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "Failed to connect to bulb"})
		return
	}

	d.power = power
	d.log.Info().Str("power", string(power)).Msg("power set")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (d *MockDaemon) handleToggle(w http.ResponseWriter, _ *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "Failed to connect to bulb"})
		return
	}

	if d.power == application.PowerOn {
		d.power = application.PowerOff
	} else {
		d.power = application.PowerOn
	}

	d.log.Info().Str("power", string(d.power)).Msg("power toggled")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "power": d.power})
}

func (d *MockDaemon) handleBrightness(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level int `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid request body"})
		return
	}
	if req.Level < 1 || req.Level > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Brightness must be 1-100"})
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "Failed to connect to bulb"})
		return
	}

	d.brightness = req.Level
	d.log.Info().Int("level", req.Level).Msg("brightness set")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "brightness": req.Level})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
