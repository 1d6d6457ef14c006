package logger

import (
	"log/slog"
	"regexp"
)

// API tokens ride in query strings and form bodies, so anything that
// quotes a URL or request payload must be scrubbed before it reaches
// the log output.
var sensitivePatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`token=[^&\s"]+`), "token=[REDACTED]"},
	{regexp.MustCompile(`api_key=[^&\s"]+`), "api_key=[REDACTED]"},
}

func Scrub(s string) string {
	for _, p := range sensitivePatterns {
		s = p.re.ReplaceAllString(s, p.replacement)
	}
	return s
}

func redactAttr(groups []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(Scrub(a.Value.String()))
	case slog.KindAny:
		// Errors are the other way secrets reach the output: a
		// url.Error quotes the full request URL, query string
		// included.
		if err, ok := a.Value.Any().(error); ok {
			a.Value = slog.StringValue(Scrub(err.Error()))
		}
	}
	return a
}
