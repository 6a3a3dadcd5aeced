package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/service"
)

const (
	codeInvalidBody   = "INVALID_BODY"
	codeInvalidImport = "INVALID_IMPORT"
	codeNotFound      = "NOT_FOUND"
)

type APIError struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps service failures onto statuses. Plan error codes
// pass through to the body unchanged.
func RespondServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		details := make([]string, 0, len(verr.Errs))
		for _, e := range verr.Errs {
			details = append(details, e.Error())
		}
		c.JSON(http.StatusBadRequest, ErrorEnvelope{
			Error: APIError{Message: "import validation failed", Code: codeInvalidImport, Details: details},
		})
		return
	}

	var perr *app.PlanError
	if !errors.As(err, &perr) {
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, string(app.PlanErrInternal), errors.New("internal error"))
		return
	}
	if perr.Code == app.PlanErrInternal {
		_ = c.Error(err)
	}
	c.JSON(statusFor(perr.Code), ErrorEnvelope{
		Error: APIError{Message: perr.Message, Code: string(perr.Code)},
	})
}

func statusFor(code app.PlanErrorCode) int {
	switch code {
	case app.PlanErrInvalidRequest, app.PlanErrInvalidPageToken:
		return http.StatusBadRequest
	case app.PlanErrLearnerNotFound, app.PlanErrItemNotFound:
		return http.StatusNotFound
	case app.PlanErrSnapshotUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
