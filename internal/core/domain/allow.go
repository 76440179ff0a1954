package domain

const (
	AllowKindActor AllowKind = iota
	AllowKindContract
)

// AllowKind tells whether an allow entry refers to an actor or to a token
// contract.
type AllowKind int

func (k AllowKind) String() string {
	if k == AllowKindContract {
		return "contract"
	}
	return "actor"
}

// AllowConfig is the singleton record of the allow module.
type AllowConfig struct {
	Paused bool
}

// AllowEntry ...
type AllowEntry struct {
	Name    string
	Kind    AllowKind `badgerhold:"index"`
	Allowed bool
	Blocked bool
}

// Key returns the storage key of the entry, unique by kind and name.
func (e AllowEntry) Key() string {
	return e.Kind.String() + ":" + e.Name
}

// Permits returns whether the entry lets its subject operate. If the allow
// list is enforced, the subject must be explicitly allowed too.
func (e *AllowEntry) Permits(enforceAllowList bool) bool {
	if e == nil {
		return !enforceAllowList
	}
	if e.Blocked {
		return false
	}
	return !enforceAllowList || e.Allowed
}
