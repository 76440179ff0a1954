package httpinterface

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *handler) proposeEscrow(c *gin.Context) {
	var req proposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	fromAssets, err := req.FromAssets.parse()
	if err != nil {
		fail(c, err)
		return
	}
	toAssets, err := req.ToAssets.parse()
	if err != nil {
		fail(c, err)
		return
	}
	expiry, err := req.expiry(time.Now())
	if err != nil {
		fail(c, err)
		return
	}

	escrow, err := h.opts.EscrowSvc.Propose(
		c.Request.Context(), accountOrSubject(c, req.From), req.To,
		fromAssets, toAssets, expiry,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newEscrowResponse(*escrow))
}

func (h *handler) getEscrow(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	escrow, err := h.opts.EscrowSvc.GetEscrow(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newEscrowResponse(*escrow))
}

// listEscrows returns the open escrows proposed by the from query param or
// addressed to the to one, all of them if none is given.
func (h *handler) listEscrows(c *gin.Context) {
	ctx := c.Request.Context()
	from, to := c.Query("from"), c.Query("to")
	if from != "" && to != "" {
		fail(c, errInvalidEscrowFilter)
		return
	}

	var res []escrowResponse
	switch {
	case from != "":
		escrows, err := h.opts.EscrowSvc.ListEscrowsFrom(ctx, from)
		if err != nil {
			fail(c, err)
			return
		}
		res = newEscrowsResponse(escrows)
	case to != "":
		escrows, err := h.opts.EscrowSvc.ListEscrowsTo(ctx, to)
		if err != nil {
			fail(c, err)
			return
		}
		res = newEscrowsResponse(escrows)
	default:
		page, err := parsePage(c)
		if err != nil {
			fail(c, err)
			return
		}
		escrows, err := h.opts.EscrowSvc.ListEscrows(ctx, page)
		if err != nil {
			fail(c, err)
			return
		}
		res = newEscrowsResponse(escrows)
	}
	c.JSON(http.StatusOK, gin.H{"escrows": res})
}

func (h *handler) acceptEscrow(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	toAssets, err := req.ToAssets.parse()
	if err != nil {
		fail(c, err)
		return
	}

	escrow, err := h.opts.EscrowSvc.Accept(
		c.Request.Context(), id, accountOrSubject(c, req.Acceptor), toAssets,
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newEscrowResponse(*escrow))
}

func (h *handler) cancelEscrow(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		fail(c, err)
		return
	}
	// The body is optional, anyone can cancel an expired escrow.
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	escrow, err := h.opts.EscrowSvc.Cancel(
		c.Request.Context(), id, accountOrSubject(c, req.Canceller),
	)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newEscrowResponse(*escrow))
}
