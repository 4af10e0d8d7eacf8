package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "a@cabinet.ma", "a@cabinet.ma"},
		{"uppercased", "X@Y.COM", "x@y.com"},
		{"padded", "  contact@agence.fr  ", "contact@agence.fr"},
		{"mailto prefix", "mailto:info@shop.ma", "info@shop.ma"},
		{"no at sign", "not-an-email", ""},
		{"no tld", "a@localhost", ""},
		{"double at", "a@@b.com", ""},
		{"empty", "", ""},
		{"placeholder domain", "info@example.com", ""},
		{"placeholder domain org", "a@example.org", ""},
		{"noreply mailbox", "noreply@realshop.ma", ""},
		{"no-reply mailbox", "no-reply@realshop.ma", ""},
		{"donotreply mailbox", "donotreply@corp.com", ""},
		{"image filename", "logo@2x.png", ""},
		{"sentry placeholder", "abcdef@sentry.io", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CleanEmail(tt.in))
		})
	}
}
