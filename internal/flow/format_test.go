package flow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sayu-dev/showcase-bot/internal/domain"
)

func TestFormatRanking(t *testing.T) {
	testCases := []struct {
		name string
		stat *domain.RankingStat
		want string
	}{
		{
			name: "nil stat degrades to placeholder",
			stat: nil,
			want: "—",
		},
		{
			name: "full stat",
			stat: &domain.RankingStat{TopPercent: 3.21, Rank: 1500, PoolSize: 250000},
			want: "Top 3.21% (1,500/250,000)",
		},
		{
			name: "unknown pool size",
			stat: &domain.RankingStat{TopPercent: 12.5, Rank: 42, PoolSize: 0},
			want: "Top 12.50% (42/—)",
		},
		{
			name: "small numbers need no separators",
			stat: &domain.RankingStat{TopPercent: 99.99, Rank: 7, PoolSize: 800},
			want: "Top 99.99% (7/800)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FormatRanking(tc.stat))
		})
	}
}

func TestGroupThousands(t *testing.T) {
	testCases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{250000, "250,000"},
		{1234567, "1,234,567"},
		{-1234567, "-1,234,567"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			require.Equal(t, tc.want, groupThousands(tc.in))
		})
	}
}

func TestValidateAccountID(t *testing.T) {
	valid := []string{"12345678", "123456789", "1234567890", " 812345678 "}
	for _, id := range valid {
		t.Run("valid "+id, func(t *testing.T) {
			require.NoError(t, ValidateAccountID(id))
		})
	}

	invalid := []string{"", "1234567", "12345678901", "12345678a", "12 345678", "-12345678"}
	for _, id := range invalid {
		t.Run("invalid "+id, func(t *testing.T) {
			require.Error(t, ValidateAccountID(id))
		})
	}
}
