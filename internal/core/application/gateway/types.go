package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

var defaultSystemAccounts = []string{"eosio", "eosio.stake", "eosio.ram"}

type Config struct {
	// Contract is the name of the account holding the assets in custody.
	Contract string
	// NftContract is the authority whose notifications carry non-fungible
	// items instead of token quantities.
	NftContract string
	// SystemAccounts are the senders whose token transfers are not deposits.
	SystemAccounts []string
}

func (c Config) validate() error {
	if err := domain.ValidateName(c.Contract); err != nil {
		return fmt.Errorf("invalid contract account: %w", err)
	}
	if len(c.NftContract) > 0 {
		if err := domain.ValidateName(c.NftContract); err != nil {
			return fmt.Errorf("invalid nft contract account: %w", err)
		}
	}
	return nil
}

func (c Config) isSystemAccount(name string) bool {
	accounts := c.SystemAccounts
	if len(accounts) <= 0 {
		accounts = defaultSystemAccounts
	}
	for _, a := range accounts {
		if a == name {
			return true
		}
	}
	return false
}

// TransferNotification is the payload of an incoming transfer, either a token
// transfer (Quantity) or a non-fungible transfer (AssetIDs).
type TransferNotification struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Quantity string   `json:"quantity,omitempty"`
	AssetIDs []uint64 `json:"asset_ids,omitempty"`
	Memo     string   `json:"memo"`
}

func parseNotification(payload []byte) (*TransferNotification, error) {
	notification := &TransferNotification{}
	if err := json.Unmarshal(payload, notification); err != nil {
		return nil, fmt.Errorf("%w: malformed transfer notification: %s", domain.ErrInvalidInput, err)
	}
	return notification, nil
}
