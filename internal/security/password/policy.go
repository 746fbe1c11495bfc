package password

import "strings"

// Warning is warn-only strength feedback for signup. Hard rules (length,
// character classes) live in the request validators; this never blocks.
type Warning struct {
	Score       int      `json:"score"` // 0..4
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Strength scores a password heuristically. hints are user inputs
// (username, email) that make a password guessable when embedded in it.
// Returns nil when the password is strong enough to not warrant a nudge.
func Strength(pwd string, hints ...string) *Warning {
	score, msg, sugg := strength(strings.TrimSpace(pwd), hints...)
	if score >= 3 {
		return nil
	}
	return &Warning{Score: score, Message: msg, Suggestions: sugg}
}

func strength(pwd string, hints ...string) (int, string, []string) {
	l := len(pwd)
	var hasL, hasU, hasD, hasS bool
	for _, r := range pwd {
		switch {
		case r >= 'a' && r <= 'z':
			hasL = true
		case r >= 'A' && r <= 'Z':
			hasU = true
		case r >= '0' && r <= '9':
			hasD = true
		default:
			hasS = true
		}
	}
	classes := 0
	for _, has := range []bool{hasL, hasU, hasD, hasS} {
		if has {
			classes++
		}
	}

	// A password containing the username or email local part is easy prey
	// unless it is long enough to survive anyway.
	for _, h := range hints {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if strings.Contains(strings.ToLower(pwd), h) && l < 16 {
			if classes > 1 {
				classes--
			}
			break
		}
	}

	switch {
	case l >= 14 && classes >= 3:
		return 4, "", nil
	case l >= 12 && classes >= 3:
		return 3, "", []string{"Consider using a 3-4 word passphrase."}
	case l >= 10 && classes >= 2:
		return 2, "Short or low variety.", []string{"Add length and mix letters/numbers/symbols."}
	case l >= 8:
		return 1, "Too short or predictable.", []string{"Use at least 10-12 chars with mixed types."}
	default:
		return 0, "Very weak password.", []string{"Use 12+ chars with upper/lower, numbers, symbols."}
	}
}
