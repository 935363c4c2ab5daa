package domain

// Entity is a playable character belonging to a linked account's roster.
// Supplied by the upstream showcase API, read-only for the bot.
type Entity struct {
	ID          int64
	DisplayName string
}

// RankingStat carries per-character performance ranking data. PoolSize may be
// unknown (zero) when the upstream leaderboard has no population count.
type RankingStat struct {
	TopPercent float64
	Rank       int64
	PoolSize   int64
}

// HasPool reports whether the leaderboard population is known.
func (s RankingStat) HasPool() bool {
	return s.PoolSize > 0
}
