package httphandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/application"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

var (
	forbiddenErrors = []error{
		domain.ErrOfferNotMaker,
		domain.ErrOfferTakerNotAllowed,
		domain.ErrParamsNotAdmin,
	}
	notFoundErrors = []error{
		domain.ErrOfferNotFound,
		application.ErrWebhookNotFound,
	}
)

// errorStatus returns the http status code for the given error.
func errorStatus(err error) int {
	switch application.KindOf(err) {
	case application.ErrKindValidation:
		return http.StatusBadRequest
	case application.ErrKindTransfer:
		return http.StatusPaymentRequired
	case application.ErrKindPrecondition:
		for _, e := range notFoundErrors {
			if errors.Is(err, e) {
				return http.StatusNotFound
			}
		}
		for _, e := range forbiddenErrors {
			if errors.Is(err, e) {
				return http.StatusForbidden
			}
		}
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes the error reply. Internal errors are logged and
// hidden behind a generic message.
func abortWithError(c *gin.Context, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("route", c.FullPath()).Error(
			"request failed",
		)
		msg = application.ErrServiceUnavailable.Error()
	}
	c.AbortWithStatusJSON(status, errorReply{Error: msg})
}

func abortWithBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorReply{Error: err.Error()})
}
