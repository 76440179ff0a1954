package httpinterface

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/infrastructure/auth"
)

var errInvalidEscrowFilter = fmt.Errorf(
	"%w: from and to filters are mutually exclusive", domain.ErrInvalidInput,
)

// errorStatuses maps the error kinds to the response status, ordered so
// that more specific kinds come first.
var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidInput, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrInsufficientBalance, http.StatusConflict},
	{domain.ErrExpiredEscrow, http.StatusGone},
	{domain.ErrActorBlocked, http.StatusForbidden},
	{domain.ErrContractBlocked, http.StatusForbidden},
	{domain.ErrContractPaused, http.StatusUnprocessableEntity},
	{domain.ErrInvalidDestination, http.StatusUnprocessableEntity},
	{domain.ErrEscrowNotExpired, http.StatusUnprocessableEntity},
}

func statusFromError(err error, authenticated bool) int {
	if errors.Is(err, domain.ErrUnauthorized) {
		if authenticated {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	_, authenticated := auth.ClaimsFromContext(c.Request.Context())
	status := statusFromError(err, authenticated)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Warnf("%s %s failed", c.Request.Method, c.FullPath())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
