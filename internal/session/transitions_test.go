package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name    string
		from    Kind
		to      Kind
		allowed bool
	}{
		{name: "fresh message to pending confirmation", from: KindNone, to: KindPendingLinkConfirmation, allowed: true},
		{name: "fresh message to profile view", from: KindNone, to: KindProfileView, allowed: true},
		{name: "profile to detail", from: KindProfileView, to: KindCharacterDetailView, allowed: true},
		{name: "profile refresh", from: KindProfileView, to: KindProfileView, allowed: true},
		{name: "detail back to profile", from: KindCharacterDetailView, to: KindProfileView, allowed: true},
		{name: "pending confirmation is terminal", from: KindPendingLinkConfirmation, to: KindProfileView, allowed: false},
		{name: "detail to detail", from: KindCharacterDetailView, to: KindCharacterDetailView, allowed: false},
		{name: "fresh message straight to detail", from: KindNone, to: KindCharacterDetailView, allowed: false},
		{name: "unknown kind", from: Kind("weird"), to: KindProfileView, allowed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.allowed, IsTransitionAllowed(tc.from, tc.to))
		})
	}
}

func TestTransitionRecorder(t *testing.T) {
	var recorded [][2]string
	RegisterTransitionRecorder(func(from, to string) {
		recorded = append(recorded, [2]string{from, to})
	})
	defer RegisterTransitionRecorder(nil)

	r := NewRegistry(testLogger())
	ref := MessageRef{ChatID: 1, MessageID: 10}

	r.Put(FlowSession{Ref: ref, OwnerID: 42, Kind: KindProfileView})
	_ = r.Update(ref, func(sess *FlowSession) error {
		sess.Kind = KindCharacterDetailView
		return nil
	})

	require.Equal(t, [][2]string{
		{"none", "profile_view"},
		{"profile_view", "character_detail_view"},
	}, recorded)
}
