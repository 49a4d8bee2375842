package itemtypes

import studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"

var ITEM_COLOR_PALETTE = []string{
	"#4f46e5",
	"#0891b2",
	"#059669",
	"#65a30d",
	"#ca8a04",
	"#ea580c",
	"#dc2626",
	"#db2777",
	"#9333ea",
	"#2563eb",
	"#0d9488",
	"#78716c",
}

// ColorFromKey picks a palette entry from the byte sum of the key. Different keys may share a color.
func ColorFromKey(key string) string {
	sum := 0
	for i := 0; i < len(key); i++ {
		sum += int(key[i])
	}
	return ITEM_COLOR_PALETTE[sum%len(ITEM_COLOR_PALETTE)]
}

// ItemColor returns the explicit editor color of the item, or the color derived from its key.
// Page breaks and survey ends have no color.
func ItemColor(item *studyTypes.SurveyItem) string {
	if item == nil {
		return ""
	}
	if c, ok := item.Metadata[studyTypes.ITEM_METADATA_KEY_EDITOR_COLOR]; ok && c != "" {
		return c
	}
	switch item.Type {
	case studyTypes.SURVEY_ITEM_TYPE_PAGE_BREAK, studyTypes.SURVEY_ITEM_TYPE_END:
		return ""
	}
	return ColorFromKey(item.Key)
}
