package normalize

import (
	_ "embed"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed phone_rules.yaml
var phoneRulesYAML []byte

// countryRule rewrites a local-format number to international form.
type countryRule struct {
	Country       string   `yaml:"country"`
	CountryCode   string   `yaml:"country_code"`
	TrunkPrefix   string   `yaml:"trunk_prefix"`
	LocalPrefixes []string `yaml:"local_prefixes"`
	LocalLength   int      `yaml:"local_length"`
}

var countryRules []countryRule

func init() {
	var doc struct {
		Rules []countryRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(phoneRulesYAML, &doc); err != nil {
		// Embedded file; a parse failure is a build defect, not a runtime
		// condition. Numbers simply pass through unreformatted.
		zap.L().Error("normalize: parse embedded phone rules", zap.Error(err))
		return
	}
	countryRules = doc.Rules
}

// minPhoneDigits is the floor below which a digit string cannot be a real
// subscriber number anywhere.
const minPhoneDigits = 8

// CleanPhone strips a raw phone string to digits and a leading '+', rewrites
// local-format numbers to international form where the country is inferable,
// and rejects too-short or obviously fake numbers. Returns "" on rejection.
func CleanPhone(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	p := b.String()

	digits := strings.TrimPrefix(p, "+")
	if len(digits) < minPhoneDigits {
		return ""
	}
	if allSameDigit(digits) || sequentialDigits(digits) {
		return ""
	}

	if strings.HasPrefix(p, "+") {
		return p
	}
	if intl := applyCountryRules(digits); intl != "" {
		return intl
	}
	return p
}

// applyCountryRules tries each configured country rule in order and returns
// the international form on the first match, or "".
func applyCountryRules(digits string) string {
	for _, rule := range countryRules {
		local := digits
		if rule.TrunkPrefix != "" {
			if !strings.HasPrefix(local, rule.TrunkPrefix) {
				continue
			}
			local = strings.TrimPrefix(local, rule.TrunkPrefix)
		}
		if len(local) != rule.LocalLength {
			continue
		}
		for _, prefix := range rule.LocalPrefixes {
			if strings.HasPrefix(local, prefix) {
				return "+" + rule.CountryCode + local
			}
		}
	}
	return ""
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return len(digits) > 0
}

// sequentialDigits reports whether the whole string ascends or descends by
// one (e.g. 12345678, 98765432), a common fake-number pattern.
func sequentialDigits(digits string) bool {
	if len(digits) < 2 {
		return false
	}
	asc, desc := true, true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[i-1]+1 {
			asc = false
		}
		if digits[i] != digits[i-1]-1 {
			desc = false
		}
	}
	return asc || desc
}
