package surveydrafts

import (
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/case-framework/survey-editor-backend/pkg/db"
	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
)

var ErrDraftNotFound = errors.New("survey draft not found")

const indexNameSurveyKey = "surveyKey_1"

var indexesForSurveyDraftsCollection = []mongo.IndexModel{
	{
		Keys: bson.D{
			{Key: "surveyKey", Value: 1},
		},
		Options: options.Index().SetName(indexNameSurveyKey).SetUnique(true),
	},
}

// EnsureIndexesForStudy creates the indexes of the draft collection of a study if they do not exist yet.
// The check runs once per study and service lifetime.
func (dbService *SurveyDraftDBService) EnsureIndexesForStudy(instanceID string, studyKey string) error {
	if !dbService.runIndexCreation || dbService.indexesEnsured(instanceID, studyKey) {
		return nil
	}
	ctx, cancel := dbService.getContext()
	defer cancel()

	collection := dbService.collectionSurveyDrafts(instanceID, studyKey)
	indexes, err := db.ListCollectionIndexes(ctx, collection)
	if err != nil {
		return err
	}
	if !db.HasIndex(indexes, indexNameSurveyKey) {
		_, err = collection.Indexes().CreateMany(ctx, indexesForSurveyDraftsCollection)
		if err != nil {
			slog.Error("Error creating index for survey drafts", slog.String("error", err.Error()), slog.String("instanceID", instanceID), slog.String("studyKey", studyKey))
			return err
		}
	}
	dbService.markIndexesEnsured(instanceID, studyKey)
	return nil
}

func indexedStudyKey(instanceID string, studyKey string) string {
	return instanceID + "/" + studyKey
}

func (dbService *SurveyDraftDBService) indexesEnsured(instanceID string, studyKey string) bool {
	dbService.indexedStudiesMu.Lock()
	defer dbService.indexedStudiesMu.Unlock()
	return dbService.indexedStudies[indexedStudyKey(instanceID, studyKey)]
}

func (dbService *SurveyDraftDBService) markIndexesEnsured(instanceID string, studyKey string) {
	dbService.indexedStudiesMu.Lock()
	defer dbService.indexedStudiesMu.Unlock()
	if dbService.indexedStudies == nil {
		dbService.indexedStudies = map[string]bool{}
	}
	dbService.indexedStudies[indexedStudyKey(instanceID, studyKey)] = true
}

func (dbService *SurveyDraftDBService) GetSurveyDraft(instanceID string, studyKey string, surveyKey string) (*studyTypes.SurveyDraft, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"surveyKey": surveyKey}

	var draft studyTypes.SurveyDraft
	err := dbService.collectionSurveyDrafts(instanceID, studyKey).FindOne(ctx, filter).Decode(&draft)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &draft, nil
}

// SaveSurveyDraft creates or replaces the draft of draft.SurveyKey.
func (dbService *SurveyDraftDBService) SaveSurveyDraft(instanceID string, draft *studyTypes.SurveyDraft) error {
	if err := dbService.EnsureIndexesForStudy(instanceID, draft.StudyKey); err != nil {
		slog.Warn("could not ensure survey draft indexes", slog.String("error", err.Error()))
	}

	ctx, cancel := dbService.getContext()
	defer cancel()

	if draft.ModifiedAt == 0 {
		draft.ModifiedAt = time.Now().Unix()
	}

	filter := bson.M{"surveyKey": draft.SurveyKey}
	update := bson.M{"$set": bson.M{
		"studyKey":         draft.StudyKey,
		"surveyKey":        draft.SurveyKey,
		"props":            draft.Props,
		"surveyDefinition": draft.SurveyDefinition,
		"baseVersionID":    draft.BaseVersionID,
		"modifiedAt":       draft.ModifiedAt,
		"modifiedBy":       draft.ModifiedBy,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := dbService.collectionSurveyDrafts(instanceID, draft.StudyKey).UpdateOne(ctx, filter, update, opts)
	return err
}

func (dbService *SurveyDraftDBService) DeleteSurveyDraft(instanceID string, studyKey string, surveyKey string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"surveyKey": surveyKey}
	res, err := dbService.collectionSurveyDrafts(instanceID, studyKey).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return ErrDraftNotFound
	}
	return nil
}

// GetSurveyDraftKeys lists the survey keys with a draft, sorted by key.
func (dbService *SurveyDraftDBService) GetSurveyDraftKeys(instanceID string, studyKey string) ([]string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	opts := dbService.findOptions().
		SetProjection(bson.M{"surveyKey": 1}).
		SetSort(bson.D{{Key: "surveyKey", Value: 1}})
	cursor, err := dbService.collectionSurveyDrafts(instanceID, studyKey).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveyKeys := []string{}
	for cursor.Next(ctx) {
		var draft studyTypes.SurveyDraft
		if err := cursor.Decode(&draft); err != nil {
			return nil, err
		}
		surveyKeys = append(surveyKeys, draft.SurveyKey)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return surveyKeys, nil
}
