package surveydrafts

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
)

var ErrSurveyNotFound = errors.New("survey not found")

var sortByPublishedDesc = bson.D{
	primitive.E{Key: "published", Value: -1},
}

// GetSurveyVersionIDs lists the version IDs of all published versions of the survey.
func (dbService *SurveyDraftDBService) GetSurveyVersionIDs(instanceID string, studyKey string, surveyKey string) ([]string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"surveyDefinition.key": surveyKey}
	res, err := dbService.collectionSurveys(instanceID, studyKey).Distinct(ctx, "versionID", filter)
	if err != nil {
		return nil, err
	}
	versionIDs := make([]string, 0, len(res))
	for _, r := range res {
		if v, ok := r.(string); ok {
			versionIDs = append(versionIDs, v)
		}
	}
	return versionIDs, nil
}

// GetCurrentSurveyVersion returns the latest published, not unpublished version of the survey.
func (dbService *SurveyDraftDBService) GetCurrentSurveyVersion(instanceID string, studyKey string, surveyKey string) (*studyTypes.Survey, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"surveyDefinition.key": surveyKey,
		"$or": []bson.M{
			{"unpublished": 0},
			{"unpublished": bson.M{"$exists": false}},
		},
	}
	opts := options.FindOne().SetSort(sortByPublishedDesc)

	var survey studyTypes.Survey
	err := dbService.collectionSurveys(instanceID, studyKey).FindOne(ctx, filter, opts).Decode(&survey)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	return &survey, nil
}

func (dbService *SurveyDraftDBService) SaveSurveyVersion(instanceID string, studyKey string, survey *studyTypes.Survey) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	ret, err := dbService.collectionSurveys(instanceID, studyKey).InsertOne(ctx, survey)
	if err != nil {
		return err
	}
	survey.ID = ret.InsertedID.(primitive.ObjectID)
	return nil
}
