package itemtypes

import studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"

const (
	ITEM_TYPE_GROUP      = "group"
	ITEM_TYPE_PAGE_BREAK = studyTypes.SURVEY_ITEM_TYPE_PAGE_BREAK
	ITEM_TYPE_SURVEY_END = studyTypes.SURVEY_ITEM_TYPE_END
	ITEM_TYPE_DISPLAY    = "display"

	ITEM_TYPE_TEXT_INPUT                            = "textInput"
	ITEM_TYPE_MULTILINE_TEXT_INPUT                  = "multilineTextInput"
	ITEM_TYPE_NUMERIC_INPUT                         = "numericInput"
	ITEM_TYPE_SINGLE_CHOICE                         = "singleChoice"
	ITEM_TYPE_MULTIPLE_CHOICE                       = "multipleChoice"
	ITEM_TYPE_DROPDOWN                              = "dropdown"
	ITEM_TYPE_DATE_INPUT                            = "dateInput"
	ITEM_TYPE_TIME_INPUT                            = "timeInput"
	ITEM_TYPE_CLOZE                                 = "clozeQuestion"
	ITEM_TYPE_MATRIX                                = "matrix"
	ITEM_TYPE_CONSENT                               = "consent"
	ITEM_TYPE_NUMERIC_SLIDER                        = "numericSlider"
	ITEM_TYPE_LIKERT                                = "likert"
	ITEM_TYPE_LIKERT_GROUP                          = "likertGroup"
	ITEM_TYPE_RESPONSIVE_SINGLE_CHOICE_ARRAY        = "responsiveSingleChoiceArray"
	ITEM_TYPE_RESPONSIVE_BIPOLAR_LIKERT_SCALE_ARRAY = "responsiveBipolarLikertScaleArray"
	ITEM_TYPE_RESPONSIVE_MATRIX                     = "responsiveMatrix"
	ITEM_TYPE_VALIDATED_RANDOM_QUESTION             = "validatedRandomQuestion"
	ITEM_TYPE_CONTACT                               = "contact"

	// fallbacks, never created by the editor
	ITEM_TYPE_UNKNOWN = "unknown"
	ITEM_TYPE_CUSTOM  = "custom"
)

// TypeDescriptor is what the editor shows for an item type.
type TypeDescriptor struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	ColorClass  string `json:"colorClass"`
}

var itemTypeDescriptors = []TypeDescriptor{
	{Key: ITEM_TYPE_GROUP, Label: "Group", Description: "Container for other items", Icon: "folder", ColorClass: "text-slate-600"},
	{Key: ITEM_TYPE_PAGE_BREAK, Label: "Page break", Description: "Starts a new page", Icon: "separator-horizontal", ColorClass: "text-slate-400"},
	{Key: ITEM_TYPE_SURVEY_END, Label: "Survey end", Description: "Content shown before submitting", Icon: "flag", ColorClass: "text-slate-400"},
	{Key: ITEM_TYPE_DISPLAY, Label: "Display", Description: "Informational text without response", Icon: "text", ColorClass: "text-sky-600"},
	{Key: ITEM_TYPE_TEXT_INPUT, Label: "Text input", Description: "Single line text response", Icon: "text-cursor-input", ColorClass: "text-emerald-600"},
	{Key: ITEM_TYPE_MULTILINE_TEXT_INPUT, Label: "Multiline text input", Description: "Free text response", Icon: "text-cursor", ColorClass: "text-emerald-600"},
	{Key: ITEM_TYPE_NUMERIC_INPUT, Label: "Numeric input", Description: "Number response", Icon: "binary", ColorClass: "text-emerald-600"},
	{Key: ITEM_TYPE_SINGLE_CHOICE, Label: "Single choice", Description: "One option out of a list", Icon: "circle-dot", ColorClass: "text-violet-600"},
	{Key: ITEM_TYPE_MULTIPLE_CHOICE, Label: "Multiple choice", Description: "Any options out of a list", Icon: "square-check", ColorClass: "text-violet-600"},
	{Key: ITEM_TYPE_DROPDOWN, Label: "Dropdown", Description: "One option from a dropdown", Icon: "chevron-down-square", ColorClass: "text-violet-600"},
	{Key: ITEM_TYPE_DATE_INPUT, Label: "Date input", Description: "Date response", Icon: "calendar", ColorClass: "text-amber-600"},
	{Key: ITEM_TYPE_TIME_INPUT, Label: "Time input", Description: "Time of day response", Icon: "clock", ColorClass: "text-amber-600"},
	{Key: ITEM_TYPE_CLOZE, Label: "Cloze", Description: "Text with embedded inputs", Icon: "puzzle", ColorClass: "text-pink-600"},
	{Key: ITEM_TYPE_MATRIX, Label: "Matrix", Description: "Table of responses", Icon: "grid", ColorClass: "text-pink-600"},
	{Key: ITEM_TYPE_CONSENT, Label: "Consent", Description: "Consent checkbox with dialog", Icon: "file-signature", ColorClass: "text-red-600"},
	{Key: ITEM_TYPE_NUMERIC_SLIDER, Label: "Numeric slider", Description: "Number picked on a slider", Icon: "sliders-horizontal", ColorClass: "text-emerald-600"},
	{Key: ITEM_TYPE_LIKERT, Label: "Likert scale", Description: "Single likert scale", Icon: "gauge", ColorClass: "text-violet-600"},
	{Key: ITEM_TYPE_LIKERT_GROUP, Label: "Likert group", Description: "Several likert scales", Icon: "rows", ColorClass: "text-violet-600"},
	{Key: ITEM_TYPE_RESPONSIVE_SINGLE_CHOICE_ARRAY, Label: "Single choice array", Description: "Rows sharing the same options", Icon: "table", ColorClass: "text-violet-600"},
	{Key: ITEM_TYPE_RESPONSIVE_BIPOLAR_LIKERT_SCALE_ARRAY, Label: "Bipolar likert array", Description: "Rows between two poles", Icon: "arrow-left-right", ColorClass: "text-violet-600"},
	{Key: ITEM_TYPE_RESPONSIVE_MATRIX, Label: "Responsive matrix", Description: "Matrix adapting to screen size", Icon: "table-2", ColorClass: "text-pink-600"},
	{Key: ITEM_TYPE_VALIDATED_RANDOM_QUESTION, Label: "Validated random question", Description: "Randomly generated check question", Icon: "shuffle", ColorClass: "text-emerald-600"},
	{Key: ITEM_TYPE_CONTACT, Label: "Contact", Description: "Contact details form", Icon: "contact", ColorClass: "text-emerald-600"},
	{Key: ITEM_TYPE_UNKNOWN, Label: "Unknown", Description: "Response group could not be interpreted", Icon: "circle-help", ColorClass: "text-yellow-600"},
	{Key: ITEM_TYPE_CUSTOM, Label: "Custom", Description: "Item type not supported by the editor", Icon: "triangle-alert", ColorClass: "text-orange-600"},
}

var descriptorsByKey = func() map[string]TypeDescriptor {
	m := make(map[string]TypeDescriptor, len(itemTypeDescriptors))
	for _, d := range itemTypeDescriptors {
		m[d.Key] = d
	}
	return m
}()

// responseRoleToItemType maps the role of the single response component to the item type.
var responseRoleToItemType = map[string]string{
	studyTypes.ITEM_COMPONENT_ROLE_INPUT:                                 ITEM_TYPE_TEXT_INPUT,
	studyTypes.ITEM_COMPONENT_ROLE_MULTILINE_TEXT_INPUT:                  ITEM_TYPE_MULTILINE_TEXT_INPUT,
	studyTypes.ITEM_COMPONENT_ROLE_NUMBER_INPUT:                          ITEM_TYPE_NUMERIC_INPUT,
	studyTypes.ITEM_COMPONENT_ROLE_SINGLE_CHOICE_GROUP:                   ITEM_TYPE_SINGLE_CHOICE,
	studyTypes.ITEM_COMPONENT_ROLE_MULTIPLE_CHOICE_GROUP:                 ITEM_TYPE_MULTIPLE_CHOICE,
	studyTypes.ITEM_COMPONENT_ROLE_DROPDOWN_GROUP:                        ITEM_TYPE_DROPDOWN,
	studyTypes.ITEM_COMPONENT_ROLE_DATE_INPUT:                            ITEM_TYPE_DATE_INPUT,
	studyTypes.ITEM_COMPONENT_ROLE_TIME_INPUT:                            ITEM_TYPE_TIME_INPUT,
	studyTypes.ITEM_COMPONENT_ROLE_CLOZE:                                 ITEM_TYPE_CLOZE,
	studyTypes.ITEM_COMPONENT_ROLE_MATRIX:                                ITEM_TYPE_MATRIX,
	studyTypes.ITEM_COMPONENT_ROLE_CONSENT:                               ITEM_TYPE_CONSENT,
	studyTypes.ITEM_COMPONENT_ROLE_SLIDER_NUMERIC:                        ITEM_TYPE_NUMERIC_SLIDER,
	studyTypes.ITEM_COMPONENT_ROLE_LIKERT:                                ITEM_TYPE_LIKERT,
	studyTypes.ITEM_COMPONENT_ROLE_LIKERT_GROUP:                          ITEM_TYPE_LIKERT_GROUP,
	studyTypes.ITEM_COMPONENT_ROLE_RESPONSIVE_SINGLE_CHOICE_ARRAY:        ITEM_TYPE_RESPONSIVE_SINGLE_CHOICE_ARRAY,
	studyTypes.ITEM_COMPONENT_ROLE_RESPONSIVE_BIPOLAR_LIKERT_SCALE_ARRAY: ITEM_TYPE_RESPONSIVE_BIPOLAR_LIKERT_SCALE_ARRAY,
	studyTypes.ITEM_COMPONENT_ROLE_RESPONSIVE_MATRIX:                     ITEM_TYPE_RESPONSIVE_MATRIX,
	studyTypes.ITEM_COMPONENT_ROLE_VALIDATED_RANDOM_QUESTION:             ITEM_TYPE_VALIDATED_RANDOM_QUESTION,
	studyTypes.ITEM_COMPONENT_ROLE_CONTACT:                               ITEM_TYPE_CONTACT,
}

// GetTypeDescriptor looks up the descriptor of a type key.
func GetTypeDescriptor(itemType string) (TypeDescriptor, bool) {
	d, ok := descriptorsByKey[itemType]
	return d, ok
}

// ItemTypes lists all descriptors in the order the editor presents them.
func ItemTypes() []TypeDescriptor {
	return append([]TypeDescriptor{}, itemTypeDescriptors...)
}

// ResponseRoleForItemType is the reverse of the role table, used to pre-shape new questions.
func ResponseRoleForItemType(itemType string) (string, bool) {
	for role, t := range responseRoleToItemType {
		if t == itemType {
			return role, true
		}
	}
	return "", false
}

func IsQuestionType(itemType string) bool {
	_, ok := ResponseRoleForItemType(itemType)
	return ok
}
