package pubsub

import (
	"time"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

func getAssetsPayload(assets domain.AssetSet) map[string]interface{} {
	tokens := make([]string, 0, len(assets.Tokens))
	for _, q := range assets.Tokens {
		tokens = append(tokens, q.String())
	}
	nfts := assets.Nfts
	if nfts == nil {
		nfts = []uint64{}
	}
	return map[string]interface{}{
		"tokens": tokens,
		"nfts":   nfts,
	}
}

func getEscrowPayload(escrow domain.Escrow) map[string]interface{} {
	return map[string]interface{}{
		"id":          escrow.ID,
		"from":        escrow.From,
		"to":          escrow.To,
		"from_assets": getAssetsPayload(escrow.FromAssets),
		"to_assets":   getAssetsPayload(escrow.ToAssets),
		"status":      escrow.Status.String(),
		"expiry":      escrow.Expiry,
		"expiry_date": time.Unix(escrow.Expiry, 0).Format(time.RFC3339),
	}
}
