// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import "regexp"

// redactionPattern pairs a compiled regex with a labeled replacement so
// a log reader knows what class of secret was removed.
type redactionPattern struct {
	pattern     *regexp.Regexp
	replacement string
}

// redactionPatterns lists the secret formats this service can leak:
// the Gemini API key, bearer tokens, key/password query or config
// values, and database connection strings. Order is most specific first.
var redactionPatterns = []redactionPattern{
	// Google API key: AIza<base62, 30+ chars>
	{
		pattern:     regexp.MustCompile(`AIza[A-Za-z0-9_-]{30,}`),
		replacement: "[REDACTED:gemini_key]",
	},
	// Bearer token in Authorization header values
	{
		pattern:     regexp.MustCompile(`Bearer\s+[A-Za-z0-9._-]{10,}`),
		replacement: "[REDACTED:bearer_token]",
	},
	// API key as URL query parameter
	{
		pattern:     regexp.MustCompile(`key=[A-Za-z0-9._-]{10,}`),
		replacement: "key=[REDACTED]",
	},
	// Password in connection strings or config values
	{
		pattern:     regexp.MustCompile(`password=[^\s&]{3,}`),
		replacement: "password=[REDACTED]",
	},
	// Connection strings with inline credentials
	{
		pattern:     regexp.MustCompile(`(postgres|postgresql|mysql)://[^\s]+@`),
		replacement: "${1}://[REDACTED]@",
	},
}

// SafeLogString redacts known secret patterns from a string before it
// reaches a log line or error message.
//
// Description:
//
//	Pattern-based only: secrets in unknown formats pass through. Input
//	is assumed to be a single log line; multi-line secrets are not
//	matched.
func SafeLogString(s string) string {
	if s == "" {
		return s
	}
	for _, p := range redactionPatterns {
		s = p.pattern.ReplaceAllString(s, p.replacement)
	}
	return s
}
