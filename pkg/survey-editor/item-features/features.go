package itemfeatures

import (
	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
)

type Feature string

const (
	FEATURE_TITLE              Feature = "title"
	FEATURE_SUBTITLE           Feature = "subtitle"
	FEATURE_FOOTNOTE           Feature = "footnote"
	FEATURE_HELP_GROUP         Feature = "helpGroup"
	FEATURE_TOP_CONTENT        Feature = "topContent"
	FEATURE_BOTTOM_CONTENT     Feature = "bottomContent"
	FEATURE_RESPONSE_GROUP     Feature = "responseGroup"
	FEATURE_MARKDOWN           Feature = "markdown"
	FEATURE_DISPLAY_CONDITION  Feature = "displayCondition"
	FEATURE_ITEM_KEY           Feature = "itemKey"
	FEATURE_EDITOR_COLOR       Feature = "editorColor"
	FEATURE_ITEM_LABEL         Feature = "itemLabel"
	FEATURE_COMPONENT_ORDERING Feature = "componentOrdering"
)

var roleOfFeature = map[Feature]string{
	FEATURE_TITLE:          studyTypes.ITEM_COMPONENT_ROLE_TITLE,
	FEATURE_SUBTITLE:       studyTypes.ITEM_COMPONENT_ROLE_SUBTITLE,
	FEATURE_FOOTNOTE:       studyTypes.ITEM_COMPONENT_ROLE_FOOTNOTE,
	FEATURE_HELP_GROUP:     studyTypes.ITEM_COMPONENT_ROLE_HELP_GROUP,
	FEATURE_RESPONSE_GROUP: studyTypes.ITEM_COMPONENT_ROLE_RESPONSE_GROUP,
	FEATURE_MARKDOWN:       studyTypes.ITEM_COMPONENT_ROLE_MARKDOWN,
}

// FeatureValue holds whichever part of the item a feature resolves to. Exactly one field is set.
type FeatureValue struct {
	Component  *studyTypes.ItemComponent `json:"component,omitempty"`
	Text       string                    `json:"text,omitempty"`
	Expression *studyTypes.Expression    `json:"expression,omitempty"`
}

// Features lists all feature tags Locate understands.
func Features() []Feature {
	return []Feature{
		FEATURE_TITLE,
		FEATURE_SUBTITLE,
		FEATURE_FOOTNOTE,
		FEATURE_HELP_GROUP,
		FEATURE_TOP_CONTENT,
		FEATURE_BOTTOM_CONTENT,
		FEATURE_RESPONSE_GROUP,
		FEATURE_MARKDOWN,
		FEATURE_DISPLAY_CONDITION,
		FEATURE_ITEM_KEY,
		FEATURE_EDITOR_COLOR,
		FEATURE_ITEM_LABEL,
		FEATURE_COMPONENT_ORDERING,
	}
}

// Locate finds a feature of the item. Returned values are copies, the item is never modified.
func Locate(item *studyTypes.SurveyItem, feature Feature) (FeatureValue, bool) {
	if item == nil {
		return FeatureValue{}, false
	}

	if role, ok := roleOfFeature[feature]; ok {
		comp := findComponentByRole(componentsOf(item), role)
		if comp == nil {
			return FeatureValue{}, false
		}
		return FeatureValue{Component: comp.Clone()}, true
	}

	switch feature {
	case FEATURE_TOP_CONTENT:
		return componentValue(GetTopContent(item))
	case FEATURE_BOTTOM_CONTENT:
		return componentValue(GetBottomContent(item))
	case FEATURE_DISPLAY_CONDITION:
		if item.Condition == nil {
			return FeatureValue{}, false
		}
		return FeatureValue{Expression: item.Condition.Clone()}, true
	case FEATURE_ITEM_KEY:
		return FeatureValue{Text: item.Key}, item.Key != ""
	case FEATURE_EDITOR_COLOR:
		return metadataValue(item, studyTypes.ITEM_METADATA_KEY_EDITOR_COLOR)
	case FEATURE_ITEM_LABEL:
		return metadataValue(item, studyTypes.ITEM_METADATA_KEY_ITEM_LABEL)
	case FEATURE_COMPONENT_ORDERING:
		if item.Components == nil || item.Components.Order == nil {
			return FeatureValue{}, false
		}
		return FeatureValue{Expression: item.Components.Order.Clone()}, true
	}
	return FeatureValue{}, false
}

func GetTitleComponent(item *studyTypes.SurveyItem) *studyTypes.ItemComponent {
	return findComponentByRole(componentsOf(item), studyTypes.ITEM_COMPONENT_ROLE_TITLE).Clone()
}

func GetSubtitleComponent(item *studyTypes.SurveyItem) *studyTypes.ItemComponent {
	return findComponentByRole(componentsOf(item), studyTypes.ITEM_COMPONENT_ROLE_SUBTITLE).Clone()
}

func GetFootnoteComponent(item *studyTypes.SurveyItem) *studyTypes.ItemComponent {
	return findComponentByRole(componentsOf(item), studyTypes.ITEM_COMPONENT_ROLE_FOOTNOTE).Clone()
}

func GetHelpGroupComponent(item *studyTypes.SurveyItem) *studyTypes.ItemComponent {
	return findComponentByRole(componentsOf(item), studyTypes.ITEM_COMPONENT_ROLE_HELP_GROUP).Clone()
}

func GetResponseGroupComponent(item *studyTypes.SurveyItem) *studyTypes.ItemComponent {
	return findComponentByRole(componentsOf(item), studyTypes.ITEM_COMPONENT_ROLE_RESPONSE_GROUP).Clone()
}

func GetMarkdownComponent(item *studyTypes.SurveyItem) *studyTypes.ItemComponent {
	return findComponentByRole(componentsOf(item), studyTypes.ITEM_COMPONENT_ROLE_MARKDOWN).Clone()
}

// GetTopContent returns the first text component placed before the response group.
// Without a response group all components count as top content.
func GetTopContent(item *studyTypes.SurveyItem) *studyTypes.ItemComponent {
	comps := componentsOf(item)
	if i := responseGroupIndex(comps); i >= 0 {
		comps = comps[:i]
	}
	return findComponentByRole(comps, studyTypes.ITEM_COMPONENT_ROLE_TEXT).Clone()
}

// GetBottomContent returns the first text component placed after the response group.
func GetBottomContent(item *studyTypes.SurveyItem) *studyTypes.ItemComponent {
	comps := componentsOf(item)
	i := responseGroupIndex(comps)
	if i < 0 {
		return nil
	}
	return findComponentByRole(comps[i+1:], studyTypes.ITEM_COMPONENT_ROLE_TEXT).Clone()
}

func componentsOf(item *studyTypes.SurveyItem) []studyTypes.ItemComponent {
	if item == nil || item.Components == nil {
		return nil
	}
	return item.Components.Items
}

func findComponentByRole(comps []studyTypes.ItemComponent, role string) *studyTypes.ItemComponent {
	for i := range comps {
		if comps[i].Role == role {
			return &comps[i]
		}
	}
	return nil
}

func responseGroupIndex(comps []studyTypes.ItemComponent) int {
	for i := range comps {
		if comps[i].Role == studyTypes.ITEM_COMPONENT_ROLE_RESPONSE_GROUP {
			return i
		}
	}
	return -1
}

func componentValue(comp *studyTypes.ItemComponent) (FeatureValue, bool) {
	if comp == nil {
		return FeatureValue{}, false
	}
	return FeatureValue{Component: comp}, true
}

func metadataValue(item *studyTypes.SurveyItem, key string) (FeatureValue, bool) {
	v, ok := item.Metadata[key]
	if !ok || v == "" {
		return FeatureValue{}, false
	}
	return FeatureValue{Text: v}, true
}
