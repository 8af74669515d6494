package handlers

import "net/http"

// Voices lists the supported languages and their voice inventories.
func (a *App) VoicesList(w http.ResponseWriter, r *http.Request) {
	languages := make([]map[string]any, 0)
	for _, lang := range a.Voices.Languages() {
		languages = append(languages, map[string]any{
			"language": lang,
			"voices":   a.Voices.Voices(lang),
			"default":  a.Voices.DefaultVoice(lang),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"languages": languages})
}
