package db

import (
	"net/url"
	"regexp"
	"strings"
)

var kvPairRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// IsPostgres reports whether the DSN targets postgres, either URL style or a
// lib/pq key=value list. Anything else is treated as a SQLite path.
func IsPostgres(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return true
	}
	return kvPairRegex.MatchString(dsn)
}

// NormalizeDSN trims quotes and whitespace from a postgres DSN and, for
// key=value form, collapses spacing and defaults sslmode=disable when absent.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	if !kvPairRegex.MatchString(s) {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

// ToURLDSN converts a key=value postgres DSN to URL form; golang-migrate
// only accepts URLs. URL-form input passes through, and a key=value list
// missing host, user or dbname is returned unchanged for the caller to
// reject.
func ToURLDSN(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if dsn == "" || strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return dsn
	}
	kv := map[string]string{}
	for _, part := range strings.Fields(dsn) {
		if k, v, ok := strings.Cut(part, "="); ok {
			kv[strings.ToLower(k)] = v
		}
	}
	if kv["host"] == "" || kv["user"] == "" || kv["dbname"] == "" {
		return dsn
	}
	u := &url.URL{Scheme: "postgres", Host: kv["host"], Path: "/" + kv["dbname"]}
	if kv["port"] != "" {
		u.Host += ":" + kv["port"]
	}
	if kv["password"] != "" {
		u.User = url.UserPassword(kv["user"], kv["password"])
	} else {
		u.User = url.User(kv["user"])
	}
	if kv["sslmode"] != "" {
		q := url.Values{}
		q.Set("sslmode", kv["sslmode"])
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// MaskDSN hides the password for log output.
func MaskDSN(dsn string) string {
	masked := dsn
	if strings.Contains(masked, "password=") {
		masked = regexp.MustCompile(`(password=)(\S+)`).ReplaceAllString(masked, `${1}***`)
	}
	if re := regexp.MustCompile(`(//[^:/]+:)([^@]+)(@)`); re.MatchString(masked) {
		masked = re.ReplaceAllString(masked, `${1}***${3}`)
	}
	return masked
}
