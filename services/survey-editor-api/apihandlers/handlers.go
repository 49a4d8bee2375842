package apihandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	editorsession "github.com/case-framework/survey-editor-backend/pkg/survey-editor/editor-session"
	newitem "github.com/case-framework/survey-editor-backend/pkg/survey-editor/new-item"
	"github.com/gin-gonic/gin"
)

func HealthCheckHandle(c *gin.Context) {
	serviceInfos := make(map[string]interface{})
	infos, err := os.ReadFile("serviceInfos.json")
	if err != nil {
		slog.Debug("Error reading serviceInfos.json", slog.String("error", err.Error()))
	} else {
		err = json.Unmarshal(infos, &serviceInfos)
		if err != nil {
			slog.Debug("Error unmarshalling serviceInfos.json", slog.String("error", err.Error()))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"serviceInfos": serviceInfos,
	})
}

// SurveyEditorDB is the persistence the editor endpoints need.
type SurveyEditorDB interface {
	editorsession.DraftStore
	DeleteSurveyDraft(instanceID string, studyKey string, surveyKey string) error
	GetSurveyDraftKeys(instanceID string, studyKey string) ([]string, error)
	GetCurrentSurveyVersion(instanceID string, studyKey string, surveyKey string) (*studyTypes.Survey, error)
	GetSurveyVersionIDs(instanceID string, studyKey string, surveyKey string) ([]string, error)
	SaveSurveyVersion(instanceID string, studyKey string, survey *studyTypes.Survey) error
}

type HttpEndpoints struct {
	dbConn             SurveyEditorDB
	sessions           *editorsession.Manager
	itemFactory        *newitem.ItemFactory
	tokenSignKey       string
	allowedInstanceIDs []string
}

func NewHTTPHandler(
	tokenSignKey string,
	dbConn SurveyEditorDB,
	sessions *editorsession.Manager,
	itemFactory *newitem.ItemFactory,
	allowedInstanceIDs []string,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:       tokenSignKey,
		dbConn:             dbConn,
		sessions:           sessions,
		itemFactory:        itemFactory,
		allowedInstanceIDs: allowedInstanceIDs,
	}
}
