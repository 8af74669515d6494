package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLocaleDetectsLanguageAndCountry(t *testing.T) {
	match := func(header string) string {
		if header == "" {
			return "ru"
		}
		return "en"
	}
	lookup := func(ip string) (string, error) { return "de", nil }

	var gotLang, gotCountry string
	handler := Locale(match, lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = LanguageFromContext(r.Context())
		gotCountry = CountryFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US")
	req.RemoteAddr = "198.51.100.10:1234"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotLang != "en" {
		t.Fatalf("language = %q, want en", gotLang)
	}
	if gotCountry != "DE" {
		t.Fatalf("country = %q, want DE", gotCountry)
	}
}

func TestLocaleExplicitHeaderWins(t *testing.T) {
	var seen string
	match := func(header string) string {
		seen = header
		return "ru"
	}
	handler := Locale(match, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Language", "ru")
	req.Header.Set("Accept-Language", "en-US")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "ru" {
		t.Fatalf("matcher received %q, want the X-Language value", seen)
	}
}

func TestLocaleWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := LanguageFromContext(req.Context()); got != "" {
		t.Fatalf("language without middleware = %q, want empty", got)
	}
}
