package logger

import (
	"net/url"
	"strings"
)

// sensitiveParams are query parameter names whose values never belong in
// logs. Bookmark and history URLs routinely carry session tokens.
var sensitiveParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"api_key":      true,
	"apikey":       true,
	"key":          true,
	"auth":         true,
	"secret":       true,
	"password":     true,
	"session":      true,
	"sid":          true,
}

// RedactURL masks credentials embedded in a URL for safe logging: the
// userinfo component and the values of sensitive query parameters.
// "https://user:pw@a.com/p?token=abc" → "https://***@a.com/p?token=***"
// Unparseable input is returned as-is; it carries no structure to leak.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	q := u.Query()
	changed := false
	for name := range q {
		if sensitiveParams[strings.ToLower(name)] {
			q.Set(name, "***")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
