package domain

import "time"

const (
	ReleaseStatusPending ReleaseStatus = iota
	ReleaseStatusSent
	ReleaseStatusFailed
)

// ReleaseStatus ...
type ReleaseStatus int

func (s ReleaseStatus) String() string {
	switch s {
	case ReleaseStatusPending:
		return "pending"
	case ReleaseStatusSent:
		return "sent"
	case ReleaseStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Release is a request to the host to move assets out of the ledger custody
// to the given account. It's stored in the same step that debits the ledger
// and delivered later by a dispatcher.
type Release struct {
	ID        uint64 `badgerhold:"key"`
	To        string
	Assets    AssetSet
	Memo      string
	Status    ReleaseStatus `badgerhold:"index"`
	Attempts  int
	LastError string
	CreatedAt int64
	UpdatedAt int64
}

// NewRelease returns a pending release request.
func NewRelease(to string, assets AssetSet, memo string) (*Release, error) {
	if err := ValidateName(to); err != nil {
		return nil, err
	}
	if err := assets.Validate(); err != nil {
		return nil, err
	}
	if assets.IsEmpty() {
		return nil, invalidInput("nothing to release")
	}
	now := time.Now().Unix()
	return &Release{
		To:        to,
		Assets:    assets.Clone(),
		Memo:      memo,
		Status:    ReleaseStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsPending ...
func (r *Release) IsPending() bool {
	return r.Status == ReleaseStatusPending
}

// MarkSent ...
func (r *Release) MarkSent() {
	r.Attempts++
	r.Status = ReleaseStatusSent
	r.LastError = ""
	r.UpdatedAt = time.Now().Unix()
}

// MarkAttemptFailed records a failed delivery. Once maxAttempts is reached
// the release is marked as failed and won't be retried anymore.
func (r *Release) MarkAttemptFailed(err error, maxAttempts int) {
	r.Attempts++
	r.LastError = err.Error()
	r.UpdatedAt = time.Now().Unix()
	if maxAttempts > 0 && r.Attempts >= maxAttempts {
		r.Status = ReleaseStatusFailed
	}
}
