package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// supportedLocales are the languages user-facing messages exist in. The
// first entry is the fallback.
var supportedLocales = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.German,
	language.Portuguese,
	language.Indonesian,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// countryLanguages maps ISO country codes to a language hint used when the
// request carries no usable Accept-Language header.
var countryLanguages = map[string]language.Tag{
	"ES": language.Spanish,
	"MX": language.Spanish,
	"AR": language.Spanish,
	"CO": language.Spanish,
	"FR": language.French,
	"DE": language.German,
	"AT": language.German,
	"BR": language.Portuguese,
	"PT": language.Portuguese,
	"ID": language.Indonesian,
}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// Locale negotiates a response language for each request and stores it with
// the resolved country in the request context. Precedence: X-Locale header,
// then Accept-Language, then a country-derived hint, then English.
func Locale(lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := resolveCountry(r, lookup)
			tag := negotiateLocale(r, country)
			ctx := context.WithValue(r.Context(), LocaleKey, tag)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, strings.ToUpper(country))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func negotiateLocale(r *http.Request, country string) language.Tag {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if tag, err := language.Parse(v); err == nil {
			matched, _, _ := localeMatcher.Match(tag)
			return matched
		}
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
			matched, _, _ := localeMatcher.Match(tags...)
			return matched
		}
	}
	if hint, ok := countryLanguages[strings.ToUpper(country)]; ok {
		matched, _, _ := localeMatcher.Match(hint)
		return matched
	}
	return language.English
}

func resolveCountry(r *http.Request, lookup CountryLookup) string {
	headerHints := []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LocaleFromContext returns the negotiated language for the request, English
// when the middleware did not run.
func LocaleFromContext(ctx context.Context) language.Tag {
	if v, ok := ctx.Value(LocaleKey).(language.Tag); ok {
		return v
	}
	return language.English
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}
