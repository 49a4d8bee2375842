package newitem

import (
	"errors"
	"fmt"
	"maps"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	itemfeatures "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-features"
	itemtypes "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-types"
)

var ErrUnsupportedConversion = errors.New("item type conversion not supported")

func isContentType(itemType string) bool {
	return itemType == itemtypes.ITEM_TYPE_DISPLAY || itemtypes.IsQuestionType(itemType)
}

// ConvertItemType rebuilds item as targetType under the same key. Texts, condition, metadata and
// validations are taken over, the response group is replaced by an empty one for the new type.
func (f *ItemFactory) ConvertItemType(item *studyTypes.SurveyItem, targetType string) (*studyTypes.SurveyItem, error) {
	if item == nil {
		return nil, errors.New("item missing")
	}
	switch sourceType := itemtypes.ClassifyItemType(item); sourceType {
	case itemtypes.ITEM_TYPE_GROUP, itemtypes.ITEM_TYPE_PAGE_BREAK, itemtypes.ITEM_TYPE_SURVEY_END:
		return nil, fmt.Errorf("%w: from %s", ErrUnsupportedConversion, sourceType)
	}
	if !isContentType(targetType) {
		return nil, fmt.Errorf("%w: to %s", ErrUnsupportedConversion, targetType)
	}
	constructor, ok := f.constructors[targetType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItemType, targetType)
	}

	target := constructor(item.Key, nil)
	target.Components = &studyTypes.ItemComponent{
		Role:  studyTypes.ITEM_COMPONENT_ROLE_ROOT,
		Items: mergeComponents(item, &target),
	}
	target.Condition = item.Condition.Clone()
	if item.Metadata != nil {
		target.Metadata = maps.Clone(item.Metadata)
	}
	if item.Validations != nil {
		c := item.Clone()
		target.Validations = c.Validations
	}
	target.ConfidentialMode = item.ConfidentialMode
	if !itemtypes.IsQuestionType(targetType) {
		target.ConfidentialMode = ""
	}
	return &target, nil
}

// mergeComponents lays out the components of the converted item: texts from the source, the response
// group from the skeleton.
func mergeComponents(source *studyTypes.SurveyItem, skeleton *studyTypes.SurveyItem) []studyTypes.ItemComponent {
	comps := []studyTypes.ItemComponent{}
	add := func(c *studyTypes.ItemComponent) {
		if c != nil {
			comps = append(comps, *c)
		}
	}
	orDefault := func(c *studyTypes.ItemComponent, def *studyTypes.ItemComponent) *studyTypes.ItemComponent {
		if c != nil {
			return c
		}
		return def
	}

	add(orDefault(itemfeatures.GetTitleComponent(source), itemfeatures.GetTitleComponent(skeleton)))
	add(itemfeatures.GetSubtitleComponent(source))
	add(itemfeatures.GetHelpGroupComponent(source))
	add(itemfeatures.GetTopContent(source))
	add(orDefault(itemfeatures.GetMarkdownComponent(source), itemfeatures.GetMarkdownComponent(skeleton)))
	add(itemfeatures.GetResponseGroupComponent(skeleton))
	add(itemfeatures.GetBottomContent(source))
	add(itemfeatures.GetFootnoteComponent(source))
	return comps
}
