package app

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// normalizeDBURL tags URL-style connection strings with the service name and a connect
// timeout unless the operator already set them. Key/value DSNs pass through unchanged.
func normalizeDBURL(raw, applicationName string, connectTimeout time.Duration) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if applicationName != "" && query.Get("application_name") == "" {
		query.Set("application_name", applicationName)
	}
	if seconds := int(connectTimeout / time.Second); seconds > 0 && query.Get("connect_timeout") == "" {
		query.Set("connect_timeout", strconv.Itoa(seconds))
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}
