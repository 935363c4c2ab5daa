// Package session tracks in-flight interactive messages: which user owns
// them, what flow state they are in, and the scratch data the flow carries.
// Sessions are process-local by design; a restart drops all in-flight flows
// and confirmations pressed afterwards surface as expired.
package session

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies the flow state a message currently displays.
type Kind string

const (
	// KindNone is the zero state before a flow's first transition.
	KindNone Kind = ""
	// KindPendingLinkConfirmation awaits a save/discard decision on a
	// freshly previewed account link.
	KindPendingLinkConfirmation Kind = "pending_link_confirmation"
	// KindProfileView displays the profile card with the roster keyboard.
	KindProfileView Kind = "profile_view"
	// KindCharacterDetailView displays a single character's build card.
	KindCharacterDetailView Kind = "character_detail_view"
)

// ErrSessionNotFound indicates that no session exists for a message.
var ErrSessionNotFound = errors.New("flow session not found")

// MessageRef identifies the one chat message a flow edits in place.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Key returns the registry key for the reference.
func (r MessageRef) Key() string {
	return fmt.Sprintf("%d:%d", r.ChatID, r.MessageID)
}

// FlowSession is the transient per-message state. OwnerID never changes for
// the lifetime of a session; exactly one session exists per live message.
type FlowSession struct {
	Ref              MessageRef
	OwnerID          int64
	Kind             Kind
	PendingAccountID string
	CurrentAccountID string
	TouchedAt        time.Time
}
