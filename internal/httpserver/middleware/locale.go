package middleware

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/requestctx"
)

// Locale negotiates the page language from the lang query parameter, then
// Accept-Language, against supported. The first supported tag is the
// fallback.
func Locale(supported []language.Tag) func(http.Handler) http.Handler {
	if len(supported) == 0 {
		supported = []language.Tag{language.English}
	}
	matcher := language.NewMatcher(supported)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, idx := language.MatchStrings(matcher, r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
			w.Header().Add("Vary", "Accept-Language")
			ctx := requestctx.WithLocale(r.Context(), supported[idx])
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParseLocales converts configured language codes, skipping invalid ones.
func ParseLocales(codes []string) []language.Tag {
	tags := make([]language.Tag, 0, len(codes))
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
