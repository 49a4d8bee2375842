package newitem

import (
	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	itemtypes "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-types"
)

const RESPONSE_GROUP_KEY = "rg"

// key of the single response component, per item type
var responseComponentKeys = map[string]string{
	itemtypes.ITEM_TYPE_TEXT_INPUT:                            "input",
	itemtypes.ITEM_TYPE_MULTILINE_TEXT_INPUT:                  "input",
	itemtypes.ITEM_TYPE_NUMERIC_INPUT:                         "number",
	itemtypes.ITEM_TYPE_SINGLE_CHOICE:                         "scg",
	itemtypes.ITEM_TYPE_MULTIPLE_CHOICE:                       "mcg",
	itemtypes.ITEM_TYPE_DROPDOWN:                              "ddg",
	itemtypes.ITEM_TYPE_DATE_INPUT:                            "date",
	itemtypes.ITEM_TYPE_TIME_INPUT:                            "time",
	itemtypes.ITEM_TYPE_CLOZE:                                 "cloze",
	itemtypes.ITEM_TYPE_MATRIX:                                "matrix",
	itemtypes.ITEM_TYPE_CONSENT:                               "consent",
	itemtypes.ITEM_TYPE_NUMERIC_SLIDER:                        "slider",
	itemtypes.ITEM_TYPE_LIKERT:                                "likert",
	itemtypes.ITEM_TYPE_LIKERT_GROUP:                          "lg",
	itemtypes.ITEM_TYPE_RESPONSIVE_SINGLE_CHOICE_ARRAY:        "rsca",
	itemtypes.ITEM_TYPE_RESPONSIVE_BIPOLAR_LIKERT_SCALE_ARRAY: "rbla",
	itemtypes.ITEM_TYPE_RESPONSIVE_MATRIX:                     "rm",
	itemtypes.ITEM_TYPE_VALIDATED_RANDOM_QUESTION:             "vrq",
	itemtypes.ITEM_TYPE_CONTACT:                               "contact",
}

// response components holding a list of options or rows
var responseComponentsWithItems = map[string]bool{
	itemtypes.ITEM_TYPE_SINGLE_CHOICE:                         true,
	itemtypes.ITEM_TYPE_MULTIPLE_CHOICE:                       true,
	itemtypes.ITEM_TYPE_DROPDOWN:                              true,
	itemtypes.ITEM_TYPE_CLOZE:                                 true,
	itemtypes.ITEM_TYPE_MATRIX:                                true,
	itemtypes.ITEM_TYPE_LIKERT:                                true,
	itemtypes.ITEM_TYPE_LIKERT_GROUP:                          true,
	itemtypes.ITEM_TYPE_RESPONSIVE_SINGLE_CHOICE_ARRAY:        true,
	itemtypes.ITEM_TYPE_RESPONSIVE_BIPOLAR_LIKERT_SCALE_ARRAY: true,
	itemtypes.ITEM_TYPE_RESPONSIVE_MATRIX:                     true,
}

func newGroup(fullKey string, parent *studyTypes.SurveyItem) studyTypes.SurveyItem {
	color := ""
	if parent != nil {
		color = parent.Metadata[studyTypes.ITEM_METADATA_KEY_EDITOR_COLOR]
	}
	if color == "" {
		color = itemtypes.ColorFromKey(fullKey)
	}
	return studyTypes.SurveyItem{
		Key:      fullKey,
		Items:    []studyTypes.SurveyItem{},
		Metadata: map[string]string{studyTypes.ITEM_METADATA_KEY_EDITOR_COLOR: color},
	}
}

func newPageBreak(fullKey string, _ *studyTypes.SurveyItem) studyTypes.SurveyItem {
	return studyTypes.SurveyItem{
		Key:  fullKey,
		Type: studyTypes.SURVEY_ITEM_TYPE_PAGE_BREAK,
	}
}

func newSurveyEnd(fullKey string, _ *studyTypes.SurveyItem) studyTypes.SurveyItem {
	return studyTypes.SurveyItem{
		Key:  fullKey,
		Type: studyTypes.SURVEY_ITEM_TYPE_END,
		Components: &studyTypes.ItemComponent{
			Role:  studyTypes.ITEM_COMPONENT_ROLE_ROOT,
			Items: []studyTypes.ItemComponent{emptyTitle()},
		},
	}
}

func newDisplayItem(fullKey string, _ *studyTypes.SurveyItem) studyTypes.SurveyItem {
	return studyTypes.SurveyItem{
		Key:      fullKey,
		Metadata: colorMetadata(fullKey),
		Components: &studyTypes.ItemComponent{
			Role: studyTypes.ITEM_COMPONENT_ROLE_ROOT,
			Items: []studyTypes.ItemComponent{
				emptyTitle(),
				{Role: studyTypes.ITEM_COMPONENT_ROLE_MARKDOWN, Key: "content", Content: []studyTypes.LocalisedObject{}},
			},
		},
	}
}

func newQuestion(itemType string) ItemConstructor {
	return func(fullKey string, _ *studyTypes.SurveyItem) studyTypes.SurveyItem {
		return studyTypes.SurveyItem{
			Key:      fullKey,
			Metadata: colorMetadata(fullKey),
			Components: &studyTypes.ItemComponent{
				Role: studyTypes.ITEM_COMPONENT_ROLE_ROOT,
				Items: []studyTypes.ItemComponent{
					emptyTitle(),
					newResponseGroup(itemType),
				},
			},
		}
	}
}

func newResponseGroup(itemType string) studyTypes.ItemComponent {
	role, _ := itemtypes.ResponseRoleForItemType(itemType)
	comp := studyTypes.ItemComponent{
		Role: role,
		Key:  responseComponentKeys[itemType],
	}
	if responseComponentsWithItems[itemType] {
		comp.Items = []studyTypes.ItemComponent{}
	}
	return studyTypes.ItemComponent{
		Role:  studyTypes.ITEM_COMPONENT_ROLE_RESPONSE_GROUP,
		Key:   RESPONSE_GROUP_KEY,
		Items: []studyTypes.ItemComponent{comp},
	}
}

func emptyTitle() studyTypes.ItemComponent {
	return studyTypes.ItemComponent{
		Role:    studyTypes.ITEM_COMPONENT_ROLE_TITLE,
		Content: []studyTypes.LocalisedObject{},
	}
}

func colorMetadata(fullKey string) map[string]string {
	return map[string]string{studyTypes.ITEM_METADATA_KEY_EDITOR_COLOR: itemtypes.ColorFromKey(fullKey)}
}
