package session

import (
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	mu   sync.Mutex
	sess FlowSession
}

// Registry is the in-memory ownership registry and flow session store. It is
// the sole authorization boundary for inline buttons: every callback handler
// must pass CheckOwner before mutating state or calling collaborators.
//
// Concurrent callbacks on different messages run independently; concurrent
// callbacks on the same message serialize through Update's per-entry mutex.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	awaiting map[int64]time.Time
	log      *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{
		entries:  make(map[string]*entry),
		awaiting: make(map[int64]time.Time),
		log:      log,
	}
}

// RegisterOwner records the sole authorized actor for a message, creating the
// session when missing. Re-registering the same message overwrites silently:
// a flow may re-register its own message after an edit that changes
// semantics.
func (r *Registry) RegisterOwner(ref MessageRef, userID int64) {
	e := r.loadOrCreate(ref)

	e.mu.Lock()
	e.sess.OwnerID = userID
	e.sess.TouchedAt = time.Now()
	e.mu.Unlock()
}

// CheckOwner reports whether userID is the registered owner of the message.
// Unknown messages are never owned by anyone.
func (r *Registry) CheckOwner(ref MessageRef, userID int64) bool {
	r.mu.RLock()
	e := r.entries[ref.Key()]
	r.mu.RUnlock()

	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.OwnerID == userID
}

// Get returns a copy of the session for the message.
func (r *Registry) Get(ref MessageRef) (FlowSession, error) {
	r.mu.RLock()
	e := r.entries[ref.Key()]
	r.mu.RUnlock()

	if e == nil {
		return FlowSession{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess, nil
}

// Update runs fn on the session under the per-message lock. This is the
// critical section of every handler: read, decide, write happen atomically
// with respect to other callbacks on the same message. Kind changes are
// reported to the registered transition recorder.
func (r *Registry) Update(ref MessageRef, fn func(*FlowSession) error) error {
	r.mu.RLock()
	e := r.entries[ref.Key()]
	r.mu.RUnlock()

	if e == nil {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.sess.Kind
	if err := fn(&e.sess); err != nil {
		return err
	}

	e.sess.Ref = ref
	e.sess.TouchedAt = time.Now()

	if e.sess.Kind != before {
		recordTransition(before, e.sess.Kind)
	}

	return nil
}

// Put upserts a whole session, used when a flow's first message is sent.
func (r *Registry) Put(sess FlowSession) {
	e := r.loadOrCreate(sess.Ref)

	e.mu.Lock()
	before := e.sess.Kind
	sess.TouchedAt = time.Now()
	e.sess = sess
	if sess.Kind != before {
		recordTransition(before, sess.Kind)
	}
	e.mu.Unlock()
}

// Forget drops the session for the message. Absence of cleanup is safe; the
// cleaner evicts stale entries regardless.
func (r *Registry) Forget(ref MessageRef) {
	r.mu.Lock()
	delete(r.entries, ref.Key())
	r.mu.Unlock()
}

// Len returns the number of live sessions, for metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// SetAwaitingInput marks or clears a user as expected to send an account id
// in their next plain-text message (the /link-without-argument flow).
func (r *Registry) SetAwaitingInput(userID int64, awaiting bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if awaiting {
		r.awaiting[userID] = time.Now()
		return
	}

	delete(r.awaiting, userID)
}

// AwaitingInput reports whether the user's next text message should be
// treated as an account id.
func (r *Registry) AwaitingInput(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.awaiting[userID]
	return ok
}

// ForgetPendingFor drops any pending-link-confirmation session owned by the
// user. At most one link preview may be active per user; starting a new link
// flow invalidates the previous one.
func (r *Registry) ForgetPendingFor(userID int64) {
	for _, e := range r.snapshot() {
		e.mu.Lock()
		match := e.sess.OwnerID == userID && e.sess.Kind == KindPendingLinkConfirmation
		ref := e.sess.Ref
		e.mu.Unlock()

		if match {
			r.Forget(ref)
		}
	}
}

// evictBefore removes sessions and awaiting flags untouched since cutoff,
// returning the number of sessions dropped. Entry locks are never taken
// while holding the registry lock.
func (r *Registry) evictBefore(cutoff time.Time) int {
	var stale []string
	for key, e := range r.snapshot() {
		e.mu.Lock()
		if e.sess.TouchedAt.Before(cutoff) {
			stale = append(stale, key)
		}
		e.mu.Unlock()
	}

	r.mu.Lock()
	for _, key := range stale {
		delete(r.entries, key)
	}
	for userID, at := range r.awaiting {
		if at.Before(cutoff) {
			delete(r.awaiting, userID)
		}
	}
	r.mu.Unlock()

	return len(stale)
}

func (r *Registry) snapshot() map[string]*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := make(map[string]*entry, len(r.entries))
	for key, e := range r.entries {
		copied[key] = e
	}
	return copied
}

func (r *Registry) loadOrCreate(ref MessageRef) *entry {
	key := ref.Key()

	r.mu.RLock()
	e := r.entries[key]
	r.mu.RUnlock()

	if e != nil {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e = r.entries[key]; e == nil {
		e = &entry{sess: FlowSession{Ref: ref}}
		r.entries[key] = e
	}

	return e
}
