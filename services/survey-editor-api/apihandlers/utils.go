package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	surveydrafts "github.com/case-framework/survey-editor-backend/pkg/db/survey-drafts"
	editorsession "github.com/case-framework/survey-editor-backend/pkg/survey-editor/editor-session"
	itemtree "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-tree"
	newitem "github.com/case-framework/survey-editor-backend/pkg/survey-editor/new-item"
	"github.com/gin-gonic/gin"
)

var errKeyMismatch = errors.New("item key in request does not match item key in path")

func statusForError(err error) int {
	switch {
	case itemtree.IsStructureError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, itemtree.ErrItemNotFound),
		errors.Is(err, surveydrafts.ErrDraftNotFound),
		errors.Is(err, surveydrafts.ErrSurveyNotFound):
		return http.StatusNotFound
	case errors.Is(err, itemtree.ErrDuplicateKey),
		errors.Is(err, itemtree.ErrSameParent),
		errors.Is(err, editorsession.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, itemtree.ErrInvalidParent),
		errors.Is(err, itemtree.ErrInvalidKey),
		errors.Is(err, itemtree.ErrCyclicMove),
		errors.Is(err, itemtree.ErrRootItem),
		errors.Is(err, itemtree.ErrInvalidIndex),
		errors.Is(err, newitem.ErrUnknownItemType),
		errors.Is(err, newitem.ErrParentNotGroup),
		errors.Is(err, newitem.ErrUnsupportedConversion),
		errors.Is(err, errKeyMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(c *gin.Context, msg string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, slog.String("error", err.Error()), slog.String("path", c.Request.URL.Path))
	} else {
		slog.Warn(msg, slog.String("error", err.Error()), slog.String("path", c.Request.URL.Path))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
