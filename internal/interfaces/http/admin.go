package httpinterface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tdex-network/custodyd/internal/core/domain"
)

func (h *handler) setPaused(c *gin.Context) {
	var req pauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.opts.AllowSvc.SetPaused(c.Request.Context(), req.Paused); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": req.Paused})
}

func (h *handler) setActor(c *gin.Context) {
	h.setAllowEntry(c, h.opts.AllowSvc.SetActor)
}

func (h *handler) setContract(c *gin.Context) {
	h.setAllowEntry(c, h.opts.AllowSvc.SetContract)
}

func (h *handler) setAllowEntry(
	c *gin.Context,
	set func(ctx context.Context, name string, allowed, blocked bool) error,
) {
	var req allowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := set(c.Request.Context(), req.Name, req.Allowed, req.Blocked); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, allowEntryResponse{req.Name, req.Allowed, req.Blocked})
}

func (h *handler) listActors(c *gin.Context) {
	h.listAllowEntries(c, h.opts.AllowSvc.ListActors)
}

func (h *handler) listContracts(c *gin.Context) {
	h.listAllowEntries(c, h.opts.AllowSvc.ListContracts)
}

func (h *handler) listAllowEntries(
	c *gin.Context,
	list func(ctx context.Context) ([]domain.AllowEntry, error),
) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}
	entries, err := list(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": newAllowEntriesResponse(entries)})
}

func (h *handler) retryRelease(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}
	if h.opts.ReleaseSvc == nil {
		c.AbortWithStatusJSON(
			http.StatusServiceUnavailable,
			gin.H{"error": "release dispatcher is not enabled"},
		)
		return
	}
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.opts.ReleaseSvc.RetryRelease(ctx, id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *handler) sweepEscrows(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}
	ids, err := h.opts.EscrowSvc.SweepExpired(ctx, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

func (h *handler) issueToken(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var ttl time.Duration
	if req.TTL != "" {
		d, err := time.ParseDuration(req.TTL)
		if err != nil || d < 0 {
			fail(c, fmt.Errorf("%w: invalid ttl %q", domain.ErrInvalidInput, req.TTL))
			return
		}
		ttl = d
	}

	token, err := h.opts.Authorizer.IssueToken(req.Account, req.Admin, ttl)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *handler) listWebhooks(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}
	hooks, err := h.opts.PubSubSvc.ListWebhooks(ctx, c.Query("topic"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": newWebhooksResponse(hooks)})
}

func (h *handler) addWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id, err := h.opts.PubSubSvc.AddWebhook(ctx, req.Topic, req.Endpoint, req.Secret)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *handler) removeWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.opts.Authorizer.RequireAdmin(ctx); err != nil {
		fail(c, err)
		return
	}
	if err := h.opts.PubSubSvc.RemoveWebhook(ctx, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
