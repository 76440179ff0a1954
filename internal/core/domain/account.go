package domain

import "fmt"

// Account holds the balance of a ledger account. An account record must never
// be stored with an empty balance.
type Account struct {
	ID        string `badgerhold:"key"`
	Assets    AssetSet
	Payer     string `badgerhold:"index"`
	UpdatedAt int64
}

// NewAccount returns an empty account for the given name.
func NewAccount(id string) (*Account, error) {
	if err := ValidateName(id); err != nil {
		return nil, err
	}
	return &Account{ID: id}, nil
}

// Credit merges the given assets into the account balance.
func (a *Account) Credit(assets AssetSet) error {
	if err := a.Assets.Add(assets); err != nil {
		return fmt.Errorf("account %s: %w", a.ID, err)
	}
	return nil
}

// Debit subtracts the given assets from the account balance. The balance is
// left untouched if any asset is not held.
func (a *Account) Debit(assets AssetSet) error {
	if err := a.Assets.Sub(assets); err != nil {
		return fmt.Errorf("account %s: %w", a.ID, err)
	}
	return nil
}

// IsEmpty returns whether the account holds nothing, meaning that its record
// must be removed.
func (a *Account) IsEmpty() bool {
	return a.Assets.IsEmpty()
}
