package httputil

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/salon-api/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ActionResponse answers commands that do not return a document.
type ActionResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// RespondWithSuccess sends a 200 with data as the body
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 with data as the body
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondWithError maps err onto a status and writes {"error": message}.
// Internal errors are logged and answered with a generic message.
func RespondWithError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Internal(err)
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: appErr.Message})
}

// RespondBindError answers a request whose body failed binding or validation.
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		RespondWithError(c, errors.Validation(describe(verrs[0])))
		return
	}
	RespondWithError(c, errors.Validation("invalid request body: "+err.Error()))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return field + " must be at least " + fe.Param()
	case "max", "lte":
		return field + " must be at most " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "gtfield":
		// Param is the Go field name; the wire uses lower camel case.
		param := fe.Param()
		if param != "" {
			param = strings.ToLower(param[:1]) + param[1:]
		}
		return field + " must be after " + param
	default:
		return field + " is invalid"
	}
}
