package surveydrafts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/case-framework/survey-editor-backend/pkg/db"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection names
const (
	COLLECTION_NAME_SUFFIX_SURVEY_DRAFTS = "surveyDrafts"
	COLLECTION_NAME_SUFFIX_SURVEYS       = "surveys"
)

type SurveyDraftDBService struct {
	DBClient         *mongo.Client
	timeout          int
	noCursorTimeout  bool
	DBNamePrefix     string
	InstanceIDs      []string
	runIndexCreation bool

	// studies whose draft collection indexes were already ensured
	indexedStudiesMu sync.Mutex
	indexedStudies   map[string]bool
}

func NewSurveyDraftDBService(configs db.DBConfig) (*SurveyDraftDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()
	if err != nil {
		return nil, err
	}

	slog.Debug("connected to survey draft DB", slog.Any("instanceIDs", configs.InstanceIDs))

	return &SurveyDraftDBService{
		DBClient:         dbClient,
		timeout:          configs.Timeout,
		noCursorTimeout:  configs.NoCursorTimeout,
		DBNamePrefix:     configs.DBNamePrefix,
		InstanceIDs:      configs.InstanceIDs,
		runIndexCreation: configs.RunIndexCreation,
		indexedStudies:   map[string]bool{},
	}, nil
}

func (dbService *SurveyDraftDBService) getDBName(instanceID string) string {
	return dbService.DBNamePrefix + instanceID + "_studyDB"
}

func (dbService *SurveyDraftDBService) collectionSurveyDrafts(instanceID string, studyKey string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(instanceID)).Collection(studyKey + "_" + COLLECTION_NAME_SUFFIX_SURVEY_DRAFTS)
}

func (dbService *SurveyDraftDBService) collectionSurveys(instanceID string, studyKey string) *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName(instanceID)).Collection(studyKey + "_" + COLLECTION_NAME_SUFFIX_SURVEYS)
}

func (dbService *SurveyDraftDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *SurveyDraftDBService) findOptions() *options.FindOptions {
	return options.Find().SetNoCursorTimeout(dbService.noCursorTimeout)
}

// Disconnect closes the client, used on shutdown.
func (dbService *SurveyDraftDBService) Disconnect() error {
	ctx, cancel := dbService.getContext()
	defer cancel()
	return dbService.DBClient.Disconnect(ctx)
}
