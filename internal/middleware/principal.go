package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

const ContextPrincipal = "principal"

// PrincipalResolver maps a bearer token onto the user it was issued to.
type PrincipalResolver interface {
	Principal(token string) (uuid.UUID, error)
}

// Principal records the caller when a bearer token is present. Anonymous
// requests pass through; a token that does not verify is rejected.
func Principal(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			return
		}

		id, err := resolver.Principal(parts[1])
		if err != nil {
			httputil.RespondWithError(c, errors.Unauthorized(err))
			return
		}

		c.Set(ContextPrincipal, id)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// PrincipalPtr is PrincipalFrom shaped for services that take an optional actor.
func PrincipalPtr(c *gin.Context) *uuid.UUID {
	id, ok := PrincipalFrom(c)
	if !ok {
		return nil
	}
	return &id
}
