package types

import (
	"encoding/json"
	"maps"
)

const (
	SURVEY_ITEM_TYPE_PAGE_BREAK = "pageBreak"
	SURVEY_ITEM_TYPE_END        = "surveyEnd"
)

// metadata keys used by the survey editor
const (
	ITEM_METADATA_KEY_EDITOR_COLOR = "editorItemColor"
	ITEM_METADATA_KEY_ITEM_LABEL   = "itemLabel"
)

const (
	ITEM_COMPONENT_ROLE_ROOT           = "root"
	ITEM_COMPONENT_ROLE_TITLE          = "title"
	ITEM_COMPONENT_ROLE_SUBTITLE       = "subtitle"
	ITEM_COMPONENT_ROLE_HELP_GROUP     = "helpGroup"
	ITEM_COMPONENT_ROLE_FOOTNOTE       = "footnote"
	ITEM_COMPONENT_ROLE_TEXT           = "text"
	ITEM_COMPONENT_ROLE_MARKDOWN       = "markdown"
	ITEM_COMPONENT_ROLE_RESPONSE_GROUP = "responseGroup"
	ITEM_COMPONENT_ROLE_OPTION         = "option"

	// response component roles
	ITEM_COMPONENT_ROLE_INPUT                                 = "input"
	ITEM_COMPONENT_ROLE_MULTILINE_TEXT_INPUT                  = "multilineTextInput"
	ITEM_COMPONENT_ROLE_NUMBER_INPUT                          = "numberInput"
	ITEM_COMPONENT_ROLE_SINGLE_CHOICE_GROUP                   = "singleChoiceGroup"
	ITEM_COMPONENT_ROLE_MULTIPLE_CHOICE_GROUP                 = "multipleChoiceGroup"
	ITEM_COMPONENT_ROLE_DROPDOWN_GROUP                        = "dropDownGroup"
	ITEM_COMPONENT_ROLE_DATE_INPUT                            = "dateInput"
	ITEM_COMPONENT_ROLE_TIME_INPUT                            = "timeInput"
	ITEM_COMPONENT_ROLE_CLOZE                                 = "cloze"
	ITEM_COMPONENT_ROLE_MATRIX                                = "matrix"
	ITEM_COMPONENT_ROLE_CONSENT                               = "consent"
	ITEM_COMPONENT_ROLE_SLIDER_NUMERIC                        = "sliderNumeric"
	ITEM_COMPONENT_ROLE_LIKERT                                = "likert"
	ITEM_COMPONENT_ROLE_LIKERT_GROUP                          = "likertGroup"
	ITEM_COMPONENT_ROLE_RESPONSIVE_SINGLE_CHOICE_ARRAY        = "responsiveSingleChoiceArray"
	ITEM_COMPONENT_ROLE_RESPONSIVE_BIPOLAR_LIKERT_SCALE_ARRAY = "responsiveBipolarLikertScaleArray"
	ITEM_COMPONENT_ROLE_RESPONSIVE_MATRIX                     = "responsiveMatrix"
	ITEM_COMPONENT_ROLE_VALIDATED_RANDOM_QUESTION             = "validatedRandomQuestion"
	ITEM_COMPONENT_ROLE_CONTACT                               = "contact"
)

var knownComponentRoles = map[string]bool{
	ITEM_COMPONENT_ROLE_ROOT:                                  true,
	ITEM_COMPONENT_ROLE_TITLE:                                 true,
	ITEM_COMPONENT_ROLE_SUBTITLE:                              true,
	ITEM_COMPONENT_ROLE_HELP_GROUP:                            true,
	ITEM_COMPONENT_ROLE_FOOTNOTE:                              true,
	ITEM_COMPONENT_ROLE_TEXT:                                  true,
	ITEM_COMPONENT_ROLE_MARKDOWN:                              true,
	ITEM_COMPONENT_ROLE_RESPONSE_GROUP:                        true,
	ITEM_COMPONENT_ROLE_OPTION:                                true,
	ITEM_COMPONENT_ROLE_INPUT:                                 true,
	ITEM_COMPONENT_ROLE_MULTILINE_TEXT_INPUT:                  true,
	ITEM_COMPONENT_ROLE_NUMBER_INPUT:                          true,
	ITEM_COMPONENT_ROLE_SINGLE_CHOICE_GROUP:                   true,
	ITEM_COMPONENT_ROLE_MULTIPLE_CHOICE_GROUP:                 true,
	ITEM_COMPONENT_ROLE_DROPDOWN_GROUP:                        true,
	ITEM_COMPONENT_ROLE_DATE_INPUT:                            true,
	ITEM_COMPONENT_ROLE_TIME_INPUT:                            true,
	ITEM_COMPONENT_ROLE_CLOZE:                                 true,
	ITEM_COMPONENT_ROLE_MATRIX:                                true,
	ITEM_COMPONENT_ROLE_CONSENT:                               true,
	ITEM_COMPONENT_ROLE_SLIDER_NUMERIC:                        true,
	ITEM_COMPONENT_ROLE_LIKERT:                                true,
	ITEM_COMPONENT_ROLE_LIKERT_GROUP:                          true,
	ITEM_COMPONENT_ROLE_RESPONSIVE_SINGLE_CHOICE_ARRAY:        true,
	ITEM_COMPONENT_ROLE_RESPONSIVE_BIPOLAR_LIKERT_SCALE_ARRAY: true,
	ITEM_COMPONENT_ROLE_RESPONSIVE_MATRIX:                     true,
	ITEM_COMPONENT_ROLE_VALIDATED_RANDOM_QUESTION:             true,
	ITEM_COMPONENT_ROLE_CONTACT:                               true,
}

// IsKnownComponentRole reports whether role is one of the component roles the editor understands.
// A variant suffix after ':' is ignored.
func IsKnownComponentRole(role string) bool {
	return knownComponentRoles[BaseComponentRole(role)]
}

// BaseComponentRole strips the variant suffix of a role, e.g. "singleChoiceGroup:horizontal" -> "singleChoiceGroup".
func BaseComponentRole(role string) string {
	for i := 0; i < len(role); i++ {
		if role[i] == ':' {
			return role[:i]
		}
	}
	return role
}

type SurveyItem struct {
	Key       string      `bson:"key" json:"key"`
	Follows   []string    `bson:"follows,omitempty" json:"follows,omitempty"`
	Condition *Expression `bson:"condition,omitempty" json:"condition,omitempty"`
	Priority  float32     `bson:"priority,omitempty" json:"priority,omitempty"`

	Metadata map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`

	// Question group attributes
	// nil for single items, non-nil (possibly empty) for groups
	Items           []SurveyItem `bson:"items" json:"items,omitempty"`
	SelectionMethod *Expression  `bson:"selectionMethod,omitempty" json:"selectionMethod,omitempty"`

	// Question attributes
	Type             string         `bson:"type,omitempty" json:"type,omitempty"` // Specify some special types e.g. 'pageBreak','surveyEnd'
	Components       *ItemComponent `bson:"components,omitempty" json:"components,omitempty"`
	Validations      []Validation   `bson:"validations,omitempty" json:"validations,omitempty"`
	ConfidentialMode string         `bson:"confidentialMode,omitempty" json:"confidentialMode,omitempty"`
}

type Validation struct {
	Key  string     `bson:"key" json:"key"`
	Type string     `bson:"type" json:"type"` // kind of validation : 'soft' or 'hard'
	Rule Expression `bson:"expression" json:"rule"`
}

type ItemComponent struct {
	Role             string            `bson:"role" json:"role"`
	Key              string            `bson:"key" json:"key"`
	Content          []LocalisedObject `bson:"content" json:"content"`
	DisplayCondition *Expression       `bson:"displayCondition,omitempty" json:"displayCondition,omitempty"`
	Disabled         *Expression       `bson:"disabled,omitempty" json:"disabled,omitempty"`

	// group component
	Items []ItemComponent `bson:"items,omitempty" json:"items,omitempty"`
	Order *Expression     `bson:"order,omitempty" json:"order,omitempty"`

	// response compontent
	Dtype      string               `bson:"dtype,omitempty" json:"dtype,omitempty"`
	Properties *ComponentProperties `bson:"properties,omitempty" json:"properties,omitempty"`

	Style       []Style           `bson:"style,omitempty" json:"style,omitempty"`
	Description []LocalisedObject `bson:"description" json:"description"`
}

type Style struct {
	Key   string `bson:"key" json:"key"`
	Value string `bson:"value" json:"value"`
}

type ComponentProperties struct {
	Min           *ExpressionArg `bson:"min" json:"min"`
	Max           *ExpressionArg `bson:"max" json:"max"`
	StepSize      *ExpressionArg `bson:"stepSize" json:"stepSize"`
	DateInputMode *ExpressionArg `bson:"dateInputMode" json:"dateInputMode"`
}

// IsGroup reports whether the item is a question group. Empty groups are groups too.
func (item *SurveyItem) IsGroup() bool {
	return item != nil && item.Items != nil
}

// MarshalJSON keeps "items": [] for empty groups so they are not read back as single items.
func (item SurveyItem) MarshalJSON() ([]byte, error) {
	type plainItem SurveyItem
	if item.Items != nil && len(item.Items) == 0 {
		return json.Marshal(struct {
			plainItem
			Items []SurveyItem `json:"items"`
		}{
			plainItem: plainItem(item),
			Items:     item.Items,
		})
	}
	return json.Marshal(plainItem(item))
}

// Clone returns a deep copy of the item including all descendants.
func (item SurveyItem) Clone() SurveyItem {
	c := item
	if item.Follows != nil {
		c.Follows = append([]string{}, item.Follows...)
	}
	c.Condition = item.Condition.Clone()
	c.SelectionMethod = item.SelectionMethod.Clone()
	if item.Metadata != nil {
		c.Metadata = maps.Clone(item.Metadata)
	}
	if item.Items != nil {
		c.Items = make([]SurveyItem, len(item.Items))
		for i, child := range item.Items {
			c.Items[i] = child.Clone()
		}
	}
	c.Components = item.Components.Clone()
	if item.Validations != nil {
		c.Validations = make([]Validation, len(item.Validations))
		for i, v := range item.Validations {
			c.Validations[i] = v.Clone()
		}
	}
	return c
}

func (v Validation) Clone() Validation {
	c := v
	c.Rule = *v.Rule.Clone()
	return c
}

// Clone returns a deep copy of the component tree, nil stays nil.
func (comp *ItemComponent) Clone() *ItemComponent {
	if comp == nil {
		return nil
	}
	c := *comp
	c.Content = cloneLocalisedObjects(comp.Content)
	c.Description = cloneLocalisedObjects(comp.Description)
	c.DisplayCondition = comp.DisplayCondition.Clone()
	c.Disabled = comp.Disabled.Clone()
	c.Order = comp.Order.Clone()
	if comp.Items != nil {
		c.Items = make([]ItemComponent, len(comp.Items))
		for i, child := range comp.Items {
			c.Items[i] = *child.Clone()
		}
	}
	if comp.Style != nil {
		c.Style = append([]Style{}, comp.Style...)
	}
	if comp.Properties != nil {
		c.Properties = &ComponentProperties{
			Min:           comp.Properties.Min.ClonePtr(),
			Max:           comp.Properties.Max.ClonePtr(),
			StepSize:      comp.Properties.StepSize.ClonePtr(),
			DateInputMode: comp.Properties.DateInputMode.ClonePtr(),
		}
	}
	return &c
}
