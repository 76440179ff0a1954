package domain

import "time"

// Withdrawal holds info about assets released from the ledger custody to an
// account. Privileged withdrawals are those that did not debit the ledger.
type Withdrawal struct {
	ID         uint64 `badgerhold:"key"`
	Account    string `badgerhold:"index"`
	Assets     AssetSet
	Memo       string
	Privileged bool
	ReleaseIDs []uint64
	Timestamp  int64
}

// NewWithdrawal ...
func NewWithdrawal(
	account string, assets AssetSet, memo string, privileged bool, releaseIDs []uint64,
) Withdrawal {
	return Withdrawal{
		Account:    account,
		Assets:     assets.Clone(),
		Memo:       memo,
		Privileged: privileged,
		ReleaseIDs: releaseIDs,
		Timestamp:  time.Now().Unix(),
	}
}
