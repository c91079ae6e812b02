// Package redact scrubs secrets and personal data from strings before they
// reach logs or error responses: API keys, bearer tokens, database
// credentials, file paths and email addresses.
package redact

import (
	"regexp"
	"strings"
)

// Placeholders substituted for redacted content.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

type rule struct {
	re          *regexp.Regexp
	placeholder string
}

// Rules run in order; credential patterns come before the generic path and
// email patterns so that URLs with passwords are caught whole.
var rules = []rule{
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|mysql|mongodb|smtps?)://[^@\s]+@`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/=]{8,}`), "Bearer " + RedactedKeyPlaceholder},
	{regexp.MustCompile(`\bpplx-[A-Za-z0-9]{16,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`\bAIza[0-9A-Za-z_\-]{30,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]+['"]?)[^'"&\s]{3,}`), "${1}${2}" + RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|key)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), "${1}${2}" + RedactedKeyPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(\\[^\\\s]+)+`), RedactedPathPlaceholder},
	{regexp.MustCompile(`goroutine \d+ \[[^\]]*\]:[\s\S]*`), "[STACK_TRACE_REDACTED]"},
}

// String redacts sensitive information from input.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.re.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Email masks an address for logging, keeping the first character of the
// local part and the domain: "jane.doe@example.com" becomes
// "j***@example.com". Anything that does not look like an address is fully
// replaced.
func Email(addr string) string {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndex(addr, "@")
	if at < 1 || at == len(addr)-1 {
		if addr == "" {
			return ""
		}
		return RedactedEmailPlaceholder
	}
	return addr[:1] + "***" + addr[at:]
}
