package gate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Accepted risk/reward notations. Anything else is unparseable; the parser
// never defaults to zero.
var (
	ratioToOne    = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*:\s*1$`)
	ratioInverted = regexp.MustCompile(`^1\s*:\s*(\d+(?:\.\d+)?)$`)
	ratioTimes    = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*[xX]$`)
	ratioPrefixed = regexp.MustCompile(`^(?i:rr)\s*=\s*(\d+(?:\.\d+)?)$`)
	ratioBare     = regexp.MustCompile(`^(\d+(?:\.\d+)?)$`)
)

// ParseRatio extracts a numeric reward-to-risk ratio from the free-text
// forms the upstream model emits: "2.5:1", "1:2.5" (inverted), "2.5x",
// "rr=2.5", or a bare "2.5". The second return is false when the text
// matches none of these or the value is not a positive number.
func ParseRatio(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}

	for _, re := range []*regexp.Regexp{ratioToOne, ratioInverted, ratioTimes, ratioPrefixed, ratioBare} {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil || value <= 0 {
			return 0, false
		}
		return value, true
	}
	return 0, false
}

// FormatRatio renders a ratio in the canonical "X:1" form.
func FormatRatio(value float64) string {
	return fmt.Sprintf("%.2f:1", value)
}
