package itemtypes

import (
	"log/slog"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
)

// Classify derives the item type from the shape of the item. It never fails: items that cannot be
// interpreted are reported as unknown or custom so they can still be shown in the editor.
func Classify(item *studyTypes.SurveyItem) TypeDescriptor {
	itemType := ClassifyItemType(item)
	d, ok := GetTypeDescriptor(itemType)
	if !ok {
		return descriptorsByKey[ITEM_TYPE_CUSTOM]
	}
	return d
}

// ClassifyItemType returns only the type key, see Classify.
func ClassifyItemType(item *studyTypes.SurveyItem) string {
	if item == nil {
		slog.Warn("cannot classify missing item")
		return ITEM_TYPE_UNKNOWN
	}
	if item.IsGroup() {
		return ITEM_TYPE_GROUP
	}
	switch item.Type {
	case studyTypes.SURVEY_ITEM_TYPE_PAGE_BREAK:
		return ITEM_TYPE_PAGE_BREAK
	case studyTypes.SURVEY_ITEM_TYPE_END:
		return ITEM_TYPE_SURVEY_END
	}

	rg := findResponseGroup(item)
	if rg == nil {
		return ITEM_TYPE_DISPLAY
	}
	if len(rg.Items) != 1 {
		slog.Warn("unexpected number of response components", slog.String("itemKey", item.Key), slog.Int("count", len(rg.Items)))
		return ITEM_TYPE_UNKNOWN
	}

	role := rg.Items[0].Role
	baseRole := studyTypes.BaseComponentRole(role)
	if baseRole == "" {
		slog.Warn("invalid response component role", slog.String("itemKey", item.Key), slog.String("role", role))
		return ITEM_TYPE_UNKNOWN
	}
	itemType, ok := responseRoleToItemType[baseRole]
	if !ok {
		slog.Warn("response component role not supported by editor", slog.String("itemKey", item.Key), slog.String("role", role))
		return ITEM_TYPE_CUSTOM
	}
	return itemType
}

func findResponseGroup(item *studyTypes.SurveyItem) *studyTypes.ItemComponent {
	if item.Components == nil {
		return nil
	}
	for i := range item.Components.Items {
		if item.Components.Items[i].Role == studyTypes.ITEM_COMPONENT_ROLE_RESPONSE_GROUP {
			return &item.Components.Items[i]
		}
	}
	return nil
}
