package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"voicebot/internal/infra"
	"voicebot/internal/ledger"
	"voicebot/internal/queue"
	"voicebot/internal/synth"
)

// App is the handler container: the ledger gates admission, the queue
// executes, the synthesizer is the external engine behind the queue.
type App struct {
	Ledger *ledger.Ledger
	Queue  *queue.Manager
	Synth  synth.Synthesizer
	Voices *synth.Catalog
	Notify queue.NotifyFunc
	Logger infra.Logger
}

// NewApp wires the handler container.
func NewApp(led *ledger.Ledger, q *queue.Manager, s synth.Synthesizer, voices *synth.Catalog, notify queue.NotifyFunc, logger infra.Logger) *App {
	return &App{
		Ledger: led,
		Queue:  q,
		Synth:  s,
		Voices: voices,
		Notify: notify,
		Logger: logger,
	}
}

// currentUserID returns the caller identity supplied by the messaging
// front-end. Authentication of that identity is the front-end's job.
func (a *App) currentUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
