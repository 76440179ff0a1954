package httpinterface

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type handler struct {
	opts ServiceOpts
}

func (h *handler) registerRoutes(router gin.IRouter) {
	v1 := router.Group("/v1")

	v1.GET("/status", h.getStatus)

	v1.GET("/accounts", h.listAccounts)
	v1.GET("/accounts/:id/balance", h.getBalance)

	v1.POST("/notifications/transfer", h.notifyTransfer)
	v1.POST("/withdraw", h.withdraw)
	v1.GET("/deposits", h.listDeposits)
	v1.GET("/withdrawals", h.listWithdrawals)
	v1.GET("/releases", h.listReleases)

	v1.POST("/escrows", h.proposeEscrow)
	v1.GET("/escrows", h.listEscrows)
	v1.GET("/escrows/:id", h.getEscrow)
	v1.POST("/escrows/:id/accept", h.acceptEscrow)
	v1.POST("/escrows/:id/cancel", h.cancelEscrow)

	v1.GET("/webhooks", h.listWebhooks)
	v1.POST("/webhooks", h.addWebhook)
	v1.DELETE("/webhooks/:id", h.removeWebhook)

	admin := v1.Group("/admin")
	admin.POST("/withdraw", h.withdrawPrivileged)
	admin.POST("/pause", h.setPaused)
	admin.GET("/actors", h.listActors)
	admin.POST("/actors", h.setActor)
	admin.GET("/contracts", h.listContracts)
	admin.POST("/contracts", h.setContract)
	admin.POST("/releases/:id/retry", h.retryRelease)
	admin.POST("/sweep", h.sweepEscrows)
	admin.POST("/tokens", h.issueToken)
}

func (h *handler) getStatus(c *gin.Context) {
	paused, err := h.opts.AllowSvc.IsPaused(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"paused":             paused,
		"release_dispatcher": h.opts.ReleaseSvc != nil,
	})
}

// requireAccountOrAdmin lets through the admin, or the owner of account if
// not empty.
func (h *handler) requireAccountOrAdmin(ctx context.Context, account string) error {
	err := h.opts.Authorizer.RequireAdmin(ctx)
	if err == nil || account == "" {
		return err
	}
	return h.opts.Authorizer.RequireAuth(ctx, account)
}

// accountOrSubject returns account if not empty, the subject of the request
// token otherwise.
func accountOrSubject(c *gin.Context, account string) string {
	if account != "" {
		return account
	}
	return subject(c)
}
