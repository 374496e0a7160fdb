package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-growth-tracker/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-growth-tracker/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrNotQuantitative),
		errors.Is(err, domain.ErrInvalidGoal),
		errors.Is(err, domain.ErrInvalidProgress),
		errors.Is(err, domain.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, domain.ErrHistoryUnavailable):
		log.Warnf("[HTTP] history store unavailable: %v", err)
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "history store unavailable, try again later"})
	default:
		_ = c.Error(err)
		log.Errorf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == "" {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}
