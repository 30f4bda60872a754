package types

// LoadState tells a collaborator what a store found when it loaded its collection.
type LoadState int

const (
	LoadOK       LoadState = iota // blob present and parsed
	LoadEmpty                     // no blob persisted yet
	LoadDegraded                  // blob present but unreadable; the store serves an empty collection
)

var LoadStateText = map[LoadState]string{
	LoadOK:       "ok",
	LoadEmpty:    "empty",
	LoadDegraded: "degraded",
}

func (s LoadState) String() string { return LoadStateText[s] }

// LoadOutcome is the result of loading one collection. Cause is set only when State is LoadDegraded.
type LoadOutcome struct {
	State LoadState
	Count int
	Cause error
}
