package middleware

import (
	"context"
	"net/http"
	"strings"
)

type languageContextKey struct{}
type countryContextKey struct{}

// LanguageMatcher picks a supported language code for an Accept-Language
// header value.
type LanguageMatcher func(acceptLanguage string) string

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// Locale detects the request language (explicit X-Language header first, then
// Accept-Language) and, when a GeoIP resolver is configured, the client
// country. Both land in the request context for handlers and the access log.
func Locale(match LanguageMatcher, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("X-Language")
			if header == "" {
				header = r.Header.Get("Accept-Language")
			}
			lang := match(header)
			ctx := context.WithValue(r.Context(), languageContextKey{}, lang)
			if lookup != nil {
				if country, err := lookup(clientIP(r)); err == nil && country != "" {
					ctx = context.WithValue(ctx, countryContextKey{}, strings.ToUpper(country))
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LanguageFromContext returns the detected language, empty when the Locale
// middleware did not run.
func LanguageFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(languageContextKey{}).(string); ok {
		return v
	}
	return ""
}

// CountryFromContext returns the detected ISO country code, if any.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(countryContextKey{}).(string); ok {
		return v
	}
	return ""
}
