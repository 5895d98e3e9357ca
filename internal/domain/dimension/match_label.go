package dimension

import (
	"regexp"
	"strconv"
	"strings"
)

// MatchLabel is the parsed form of labels such as "Arsenal - Chelsea 2:1".
type MatchLabel struct {
	Home      string
	Away      string
	HomeScore *int
	AwayScore *int
}

var matchLabelPattern = regexp.MustCompile(`^\s*(.+?)\s+[-–]\s+(.+?)(?:\s*,?\s+(\d+)\s*[:\-]\s*(\d+))?\s*$`)

// ParseMatchLabel splits a label on a spaced dash. Hyphenated names like "Saint-Germain"
// stay intact.
func ParseMatchLabel(label string) (MatchLabel, bool) {
	groups := matchLabelPattern.FindStringSubmatch(label)
	if groups == nil {
		return MatchLabel{}, false
	}

	out := MatchLabel{
		Home: strings.TrimSpace(groups[1]),
		Away: strings.TrimSpace(groups[2]),
	}
	if out.Home == "" || out.Away == "" {
		return MatchLabel{}, false
	}
	if groups[3] != "" && groups[4] != "" {
		home, errHome := strconv.Atoi(groups[3])
		away, errAway := strconv.Atoi(groups[4])
		if errHome == nil && errAway == nil {
			out.HomeScore = &home
			out.AwayScore = &away
		}
	}
	return out, true
}
