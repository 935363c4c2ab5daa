package session

// validTransitions contains the permitted flow transitions. Fetching is not
// a stable state: it only exists inside a single handler invocation, so it
// never appears here.
var validTransitions = map[Kind][]Kind{
	KindNone: {
		KindPendingLinkConfirmation,
		KindProfileView,
	},
	KindPendingLinkConfirmation: {
		// Terminal after save or discard; the session is forgotten rather
		// than transitioned.
	},
	KindProfileView: {
		KindProfileView,
		KindCharacterDetailView,
	},
	KindCharacterDetailView: {
		KindProfileView,
	},
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe flow
// transitions, e.g. for metrics.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// IsTransitionAllowed reports whether moving from one kind to another is
// valid.
func IsTransitionAllowed(from, to Kind) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, kind := range allowed {
		if kind == to {
			return true
		}
	}

	return false
}

func recordTransition(from, to Kind) {
	fromLabel := string(from)
	if fromLabel == "" {
		fromLabel = "none"
	}

	toLabel := string(to)
	if toLabel == "" {
		toLabel = "none"
	}

	transitionRecorder(fromLabel, toLabel)
}
