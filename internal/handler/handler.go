package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

// Routes is implemented by every resource handler.
type Routes interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ParamID parses the named path parameter as a UUID. On failure it answers
// 400 and reports false.
func ParamID(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid "+resource+" ID"))
		return uuid.Nil, false
	}
	return id, true
}
