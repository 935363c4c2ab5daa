package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sayu-dev/showcase-bot/internal/domain"
)

// rankingPlaceholder is shown when a character has no ranking data or the
// leaderboard population is unknown.
const rankingPlaceholder = "—"

// FormatRanking renders a ranking stat for a build card caption. Unknown
// stats and unknown pool sizes degrade to the placeholder dash rather than
// showing numbers that do not exist.
func FormatRanking(stat *domain.RankingStat) string {
	if stat == nil {
		return rankingPlaceholder
	}

	pool := rankingPlaceholder
	if stat.HasPool() {
		pool = groupThousands(stat.PoolSize)
	}

	return fmt.Sprintf("Top %.2f%% (%s/%s)", stat.TopPercent, groupThousands(stat.Rank), pool)
}

// groupThousands formats n with comma thousands separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// ValidateAccountID checks the 8–10 digit account id rule. This runs before
// any collaborator is contacted.
func ValidateAccountID(raw string) error {
	raw = strings.TrimSpace(raw)
	if len(raw) < 8 || len(raw) > 10 {
		return errInvalidAccountID
	}

	for _, r := range raw {
		if r < '0' || r > '9' {
			return errInvalidAccountID
		}
	}

	return nil
}
