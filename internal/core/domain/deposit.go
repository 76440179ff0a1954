package domain

import "time"

// Deposit holds info about assets credited to an account through an incoming
// transfer notification.
type Deposit struct {
	ID        uint64 `badgerhold:"key"`
	Account   string `badgerhold:"index"`
	Contract  string
	Assets    AssetSet
	Memo      string
	Timestamp int64
}

// NewDeposit ...
func NewDeposit(account, contract string, assets AssetSet, memo string) Deposit {
	return Deposit{
		Account:   account,
		Contract:  contract,
		Assets:    assets.Clone(),
		Memo:      memo,
		Timestamp: time.Now().Unix(),
	}
}
