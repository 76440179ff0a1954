package httpinterface

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/custodyd/internal/core/domain"
)

func (h *handler) getBalance(c *gin.Context) {
	account := c.Param("id")
	balance, err := h.opts.LedgerSvc.BalanceOf(c.Request.Context(), account)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, balanceResponse{account, newAssets(balance)})
}

func (h *handler) listAccounts(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		fail(c, err)
		return
	}

	accounts, err := h.opts.LedgerSvc.ListAccounts(ctx, page)
	if err != nil {
		fail(c, err)
		return
	}
	res := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		res = append(res, accountResponse{
			Account:   a.ID,
			Assets:    newAssets(a.Assets),
			Payer:     a.Payer,
			UpdatedAt: a.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"accounts": res})
}

// notifyTransfer forwards the transfer notification in the body to the
// gateway. The emitting contract is read from the contract field.
func (h *handler) notifyTransfer(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}

	payload, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	envelope := struct {
		Contract string `json:"contract"`
	}{}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		fail(c, fmt.Errorf("%w: malformed transfer notification", domain.ErrInvalidInput))
		return
	}
	if err := domain.ValidateName(envelope.Contract); err != nil {
		fail(c, fmt.Errorf("invalid notification contract: %w", err))
		return
	}

	if err := h.opts.GatewaySvc.OnIncomingTransfer(
		ctx, envelope.Contract, payload,
	); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *handler) withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	assets, err := req.Assets.parse()
	if err != nil {
		fail(c, err)
		return
	}

	withdrawal, err := h.opts.GatewaySvc.Withdraw(
		c.Request.Context(), accountOrSubject(c, req.Account), assets,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newWithdrawalResponse(*withdrawal))
}

func (h *handler) withdrawPrivileged(c *gin.Context) {
	var req adminWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	assets, err := req.Assets.parse()
	if err != nil {
		fail(c, err)
		return
	}

	withdrawal, err := h.opts.GatewaySvc.WithdrawPrivileged(
		c.Request.Context(), req.Account, assets, req.Memo,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newWithdrawalResponse(*withdrawal))
}

func (h *handler) listDeposits(c *gin.Context) {
	ctx := c.Request.Context()
	account := c.Query("account")
	if err := h.requireAccountOrAdmin(ctx, account); err != nil {
		fail(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		fail(c, err)
		return
	}

	deposits, err := h.opts.GatewaySvc.ListDeposits(ctx, account, page)
	if err != nil {
		fail(c, err)
		return
	}
	res := make([]depositResponse, 0, len(deposits))
	for _, d := range deposits {
		res = append(res, newDepositResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"deposits": res})
}

func (h *handler) listWithdrawals(c *gin.Context) {
	ctx := c.Request.Context()
	account := c.Query("account")
	if err := h.requireAccountOrAdmin(ctx, account); err != nil {
		fail(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		fail(c, err)
		return
	}

	withdrawals, err := h.opts.GatewaySvc.ListWithdrawals(ctx, account, page)
	if err != nil {
		fail(c, err)
		return
	}
	res := make([]withdrawalResponse, 0, len(withdrawals))
	for _, w := range withdrawals {
		res = append(res, newWithdrawalResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": res})
}

func (h *handler) listReleases(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		fail(c, err)
		return
	}

	releases, err := h.opts.GatewaySvc.ListReleases(ctx, page)
	if err != nil {
		fail(c, err)
		return
	}
	res := make([]releaseResponse, 0, len(releases))
	for _, r := range releases {
		res = append(res, newReleaseResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"releases": res})
}
