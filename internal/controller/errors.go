package controller

import (
	"errors"
	"net/http"
	"quizify_backend/internal/model"
	"quizify_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP responses. Unknown errors are
// logged and reported as 500.
func respondError(ctx *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		util.BadRequest(ctx, verr.Error())
	case errors.Is(err, util.ErrQuizNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrQuizNotPublished),
		errors.Is(err, util.ErrPermissionDenied):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrSessionClosed),
		errors.Is(err, util.ErrAnswerRequired):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, "该邮箱已被注册")
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrInvalidDocument):
		util.Error(ctx, http.StatusUnsupportedMediaType, util.ErrInvalidDocument.Error())
	case errors.Is(err, util.ErrDocumentTooLarge):
		util.Error(ctx, http.StatusRequestEntityTooLarge, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
