package reconcile

// State is the phase a reconciliation run is in.
//
// A run moves Idle → Parsing → Inventoried → Reconciling → Reconciled →
// Persisting → Done. A dry run goes from Reconciled straight to Done.
// ParseFailed, ConflictFailed, DownloadFailed and DocumentFailed are terminal
// error states; DocumentFailed covers both loading and saving the mod list.
type State int

const (
	Idle State = iota
	Parsing
	ParseFailed
	Inventoried
	Reconciling
	ConflictFailed
	DownloadFailed
	Reconciled
	Persisting
	DocumentFailed
	Done
)

var stateNames = [...]string{
	Idle:           "idle",
	Parsing:        "parsing",
	ParseFailed:    "parse-failed",
	Inventoried:    "inventoried",
	Reconciling:    "reconciling",
	ConflictFailed: "conflict-failed",
	DownloadFailed: "download-failed",
	Reconciled:     "reconciled",
	Persisting:     "persisting",
	DocumentFailed: "document-failed",
	Done:           "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case ParseFailed, ConflictFailed, DownloadFailed, DocumentFailed, Done:
		return true
	}
	return false
}
