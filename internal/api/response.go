package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hitesh-Saha/FeastAI/internal/middleware"
	"github.com/Hitesh-Saha/FeastAI/internal/service"
)

// Envelope is the success response shape shared by every endpoint.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// ErrorEnvelope is the failure response shape. Errors maps a field path to
// its messages.
type ErrorEnvelope struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Errors   map[string][]string `json:"errors,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
}

// FavoriteState reports a caller's favorite relationship with a recipe.
type FavoriteState struct {
	IsFavorited bool `json:"isFavorited"`
}

const msgInvalidBody = "Invalid request body"

func respond[T any](c *gin.Context, status int, message string, data T) {
	c.JSON(status, Envelope[T]{Success: true, Message: message, Data: data})
}

// respondList is respond for collections; an empty result is sent as [].
func respondList[T any](c *gin.Context, status int, items []T) {
	if items == nil {
		items = []T{}
	}
	respond(c, status, "", items)
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindTimeout:
		return http.StatusGatewayTimeout
	case service.KindUpstream:
		return http.StatusBadGateway
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error onto the error envelope. Anything that
// is not a *service.Error is reported as a generic internal failure.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		svcErr = &service.Error{Kind: service.KindInternal, Message: "Something went wrong. Please try again.", Err: err}
	}

	status := statusFor(svcErr.Kind)
	body := ErrorEnvelope{Message: svcErr.Message, Errors: svcErr.Fields}
	if svcErr.Kind == service.KindUnauthenticated {
		body.Redirect = "/login"
	}

	log := middleware.Logger(c).WithField("kind", svcErr.Kind.String())
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	} else {
		log.WithError(err).Debug("request refused")
	}

	c.AbortWithStatusJSON(status, body)
}

func respondBadBody(c *gin.Context, err error) {
	middleware.Logger(c).WithError(err).Debug("could not bind request body")
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorEnvelope{Message: msgInvalidBody})
}
