package normalize

import (
	"regexp"
	"strings"
)

// emailPattern is the standard permissive syntax check. Anything the
// upstream mail provider would bounce on syntax alone fails here.
var emailPattern = regexp.MustCompile(`^[a-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)+$`)

// placeholderDomains are test/documentation domains that scrapers routinely
// pick up from page templates. Leads with these are worthless.
var placeholderDomains = map[string]bool{
	"example.com":    true,
	"example.org":    true,
	"example.net":    true,
	"email.com":      true,
	"domain.com":     true,
	"yourdomain.com": true,
	"test.com":       true,
	"sentry.io":      true,
	"wixpress.com":   true,
}

// placeholderLocalPrefixes reject automated mailbox addresses.
var placeholderLocalPrefixes = []string{"noreply", "no-reply", "donotreply", "do-not-reply", "mailer-daemon"}

// CleanEmail lowercases, trims, and validates an email address. Returns the
// cleaned address, or "" if the input is malformed or a known placeholder.
func CleanEmail(raw string) string {
	e := strings.ToLower(strings.TrimSpace(raw))
	e = strings.TrimPrefix(e, "mailto:")
	if e == "" || !emailPattern.MatchString(e) {
		return ""
	}

	at := strings.LastIndex(e, "@")
	local, domain := e[:at], e[at+1:]

	if placeholderDomains[domain] {
		return ""
	}
	for _, p := range placeholderLocalPrefixes {
		if strings.HasPrefix(local, p) {
			return ""
		}
	}

	// Image filenames scraped out of src attributes occasionally match the
	// email pattern (logo@2x.png).
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"} {
		if strings.HasSuffix(domain, ext) {
			return ""
		}
	}

	return e
}
