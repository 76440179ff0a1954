package httpinterface

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

// Assets is the JSON form of an asset set. Tokens are quantities in the
// "100.0000 XPR@eosio.token" form.
type Assets struct {
	Tokens []string `json:"tokens,omitempty"`
	Nfts   []uint64 `json:"nfts,omitempty"`
}

func newAssets(set domain.AssetSet) Assets {
	tokens := make([]string, 0, len(set.Tokens))
	for _, q := range set.Tokens {
		tokens = append(tokens, q.String())
	}
	return Assets{Tokens: tokens, Nfts: set.Nfts}
}

func (a Assets) parse() (domain.AssetSet, error) {
	tokens := make([]domain.Quantity, 0, len(a.Tokens))
	for _, str := range a.Tokens {
		q, err := domain.ParseQuantityWithIssuer(str)
		if err != nil {
			return domain.AssetSet{}, err
		}
		tokens = append(tokens, q)
	}
	if len(tokens) <= 0 {
		tokens = nil
	}
	return domain.NewAssetSet(tokens, a.Nfts)
}

type balanceResponse struct {
	Account string `json:"account"`
	Assets  Assets `json:"assets"`
}

type accountResponse struct {
	Account   string `json:"account"`
	Assets    Assets `json:"assets"`
	Payer     string `json:"payer"`
	UpdatedAt int64  `json:"updated_at"`
}

type withdrawRequest struct {
	Account string `json:"account"`
	Assets  Assets `json:"assets"`
}

type adminWithdrawRequest struct {
	Account string `json:"account" binding:"required"`
	Assets  Assets `json:"assets"`
	Memo    string `json:"memo"`
}

type withdrawalResponse struct {
	ID         uint64   `json:"id"`
	Account    string   `json:"account"`
	Assets     Assets   `json:"assets"`
	Memo       string   `json:"memo"`
	Privileged bool     `json:"privileged"`
	ReleaseIDs []uint64 `json:"release_ids"`
	Timestamp  int64    `json:"timestamp"`
}

func newWithdrawalResponse(w domain.Withdrawal) withdrawalResponse {
	return withdrawalResponse{
		ID:         w.ID,
		Account:    w.Account,
		Assets:     newAssets(w.Assets),
		Memo:       w.Memo,
		Privileged: w.Privileged,
		ReleaseIDs: w.ReleaseIDs,
		Timestamp:  w.Timestamp,
	}
}

type depositResponse struct {
	ID        uint64 `json:"id"`
	Account   string `json:"account"`
	Contract  string `json:"contract"`
	Assets    Assets `json:"assets"`
	Memo      string `json:"memo"`
	Timestamp int64  `json:"timestamp"`
}

func newDepositResponse(d domain.Deposit) depositResponse {
	return depositResponse{
		ID:        d.ID,
		Account:   d.Account,
		Contract:  d.Contract,
		Assets:    newAssets(d.Assets),
		Memo:      d.Memo,
		Timestamp: d.Timestamp,
	}
}

type releaseResponse struct {
	ID        uint64 `json:"id"`
	To        string `json:"to"`
	Assets    Assets `json:"assets"`
	Memo      string `json:"memo"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func newReleaseResponse(r domain.Release) releaseResponse {
	return releaseResponse{
		ID:        r.ID,
		To:        r.To,
		Assets:    newAssets(r.Assets),
		Memo:      r.Memo,
		Status:    r.Status.String(),
		Attempts:  r.Attempts,
		LastError: r.LastError,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type proposeRequest struct {
	From       string `json:"from"`
	To         string `json:"to" binding:"required"`
	FromAssets Assets `json:"from_assets"`
	ToAssets   Assets `json:"to_assets"`
	// Expiry is a unix timestamp in seconds. If missing, ExpiresIn is used.
	Expiry    int64  `json:"expiry"`
	ExpiresIn string `json:"expires_in"`
}

func (r proposeRequest) expiry(now time.Time) (time.Time, error) {
	if r.Expiry > 0 {
		return time.Unix(r.Expiry, 0), nil
	}
	if r.ExpiresIn == "" {
		return time.Time{}, fmt.Errorf(
			"%w: one of expiry or expires_in is required", domain.ErrInvalidInput,
		)
	}
	d, err := time.ParseDuration(r.ExpiresIn)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}
	return now.Add(d), nil
}

type acceptRequest struct {
	Acceptor string `json:"acceptor"`
	ToAssets Assets `json:"to_assets"`
}

type cancelRequest struct {
	Canceller string `json:"canceller"`
}

type escrowResponse struct {
	ID         uint64 `json:"id"`
	From       string `json:"from"`
	To         string `json:"to"`
	FromAssets Assets `json:"from_assets"`
	ToAssets   Assets `json:"to_assets"`
	Expiry     int64  `json:"expiry"`
	Payer      string `json:"payer"`
	CreatedAt  int64  `json:"created_at"`
	Status     string `json:"status"`
}

func newEscrowResponse(e domain.Escrow) escrowResponse {
	return escrowResponse{
		ID:         e.ID,
		From:       e.From,
		To:         e.To,
		FromAssets: newAssets(e.FromAssets),
		ToAssets:   newAssets(e.ToAssets),
		Expiry:     e.Expiry,
		Payer:      e.Payer,
		CreatedAt:  e.CreatedAt,
		Status:     e.Status.String(),
	}
}

func newEscrowsResponse(escrows []domain.Escrow) []escrowResponse {
	res := make([]escrowResponse, 0, len(escrows))
	for _, e := range escrows {
		res = append(res, newEscrowResponse(e))
	}
	return res
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

type allowRequest struct {
	Name    string `json:"name" binding:"required"`
	Allowed bool   `json:"allowed"`
	Blocked bool   `json:"blocked"`
}

type allowEntryResponse struct {
	Name    string `json:"name"`
	Allowed bool   `json:"allowed"`
	Blocked bool   `json:"blocked"`
}

func newAllowEntriesResponse(entries []domain.AllowEntry) []allowEntryResponse {
	res := make([]allowEntryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, allowEntryResponse{e.Name, e.Allowed, e.Blocked})
	}
	return res
}

type webhookRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Endpoint string `json:"endpoint" binding:"required"`
	Secret   string `json:"secret"`
}

type webhookResponse struct {
	ID       string `json:"id"`
	Topic    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secured  bool   `json:"secured"`
}

func newWebhooksResponse(hooks []ports.Subscription) []webhookResponse {
	res := make([]webhookResponse, 0, len(hooks))
	for _, h := range hooks {
		res = append(res, webhookResponse{
			ID:       h.Id(),
			Topic:    h.Topic(),
			Endpoint: h.NotifyAt(),
			Secured:  h.IsSecured(),
		})
	}
	return res
}

type tokenRequest struct {
	Account string `json:"account"`
	Admin   bool   `json:"admin"`
	// TTL is a duration string like "24h", the token never expires if empty.
	TTL string `json:"ttl"`
}

// parsePage returns the page requested with the page and size query params,
// nil if none is given.
func parsePage(c *gin.Context) (*domain.Page, error) {
	pageStr, sizeStr := c.Query("page"), c.Query("size")
	if pageStr == "" && sizeStr == "" {
		return nil, nil
	}

	var number, size int
	var err error
	if pageStr != "" {
		if number, err = strconv.Atoi(pageStr); err != nil || number <= 0 {
			return nil, fmt.Errorf("%w: invalid page %q", domain.ErrInvalidInput, pageStr)
		}
	}
	if sizeStr != "" {
		if size, err = strconv.Atoi(sizeStr); err != nil || size <= 0 {
			return nil, fmt.Errorf("%w: invalid page size %q", domain.ErrInvalidInput, sizeStr)
		}
	}
	page := domain.NewPage(number, size)
	return &page, nil
}

func parseID(c *gin.Context) (uint64, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, idStr)
	}
	return id, nil
}
