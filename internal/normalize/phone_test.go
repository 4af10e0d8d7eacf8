package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"moroccan mobile local form", "0612345678", "+212612345678"},
		{"moroccan mobile 07", "0712983456", "+212712983456"},
		{"moroccan landline", "0522987654", "+212522987654"},
		{"already international", "+212612345678", "+212612345678"},
		{"separators stripped", "06 12-34.56(78)", "+212612345678"},
		{"french mobile", "0687654321", "+212687654321"}, // MA rule wins for 06; deployment default
		{"french landline 01", "0187654321", "+33187654321"},
		{"too short", "12345", ""},
		{"all same digit", "+66666666666", ""},
		{"sequential ascending", "+12345678", ""},
		{"sequential descending", "98765432", ""},
		{"empty", "", ""},
		{"letters only", "call me", ""},
		{"plus not leading ignored", "06+12345678", "+212612345678"},
		{"unknown country passes through", "4155552671", "4155552671"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CleanPhone(tt.in))
		})
	}
}

func TestCleanPhone_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"0612345678", "+212612345678", "0187654321"} {
		once := CleanPhone(in)
		assert.Equal(t, once, CleanPhone(once))
	}
}
