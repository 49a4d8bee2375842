package itemfeatures

import (
	"errors"
	"testing"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
)

func textContent(lang string, parts ...studyTypes.ExpressionArg) []studyTypes.LocalisedObject {
	return []studyTypes.LocalisedObject{{Code: lang, Parts: parts}}
}

func str(s string) studyTypes.ExpressionArg {
	return studyTypes.ExpressionArg{DType: "str", Str: s}
}

func mockQuestion() studyTypes.SurveyItem {
	return studyTypes.SurveyItem{
		Key:       "weekly.Q1",
		Metadata:  map[string]string{studyTypes.ITEM_METADATA_KEY_EDITOR_COLOR: "#4f46e5"},
		Condition: &studyTypes.Expression{Name: "isDefined"},
		Components: &studyTypes.ItemComponent{
			Role:  studyTypes.ITEM_COMPONENT_ROLE_ROOT,
			Order: &studyTypes.Expression{Name: "sequential"},
			Items: []studyTypes.ItemComponent{
				{Role: studyTypes.ITEM_COMPONENT_ROLE_TITLE, Key: "title", Content: textContent("en", str("How are you?"))},
				{Role: studyTypes.ITEM_COMPONENT_ROLE_HELP_GROUP, Key: "help"},
				{Role: studyTypes.ITEM_COMPONENT_ROLE_TEXT, Key: "top", Content: textContent("en", str("above"))},
				{Role: studyTypes.ITEM_COMPONENT_ROLE_RESPONSE_GROUP, Key: "rg", Items: []studyTypes.ItemComponent{
					{Role: studyTypes.ITEM_COMPONENT_ROLE_SINGLE_CHOICE_GROUP, Key: "scg"},
				}},
				{Role: studyTypes.ITEM_COMPONENT_ROLE_TEXT, Key: "bottom", Content: textContent("en", str("below"))},
				{Role: studyTypes.ITEM_COMPONENT_ROLE_FOOTNOTE, Key: "fn"},
			},
		},
	}
}

func TestLocate(t *testing.T) {
	item := mockQuestion()

	tests := []struct {
		feature      Feature
		found        bool
		componentKey string
		text         string
		expression   string
	}{
		{FEATURE_TITLE, true, "title", "", ""},
		{FEATURE_SUBTITLE, false, "", "", ""},
		{FEATURE_HELP_GROUP, true, "help", "", ""},
		{FEATURE_FOOTNOTE, true, "fn", "", ""},
		{FEATURE_RESPONSE_GROUP, true, "rg", "", ""},
		{FEATURE_MARKDOWN, false, "", "", ""},
		{FEATURE_TOP_CONTENT, true, "top", "", ""},
		{FEATURE_BOTTOM_CONTENT, true, "bottom", "", ""},
		{FEATURE_DISPLAY_CONDITION, true, "", "", "isDefined"},
		{FEATURE_COMPONENT_ORDERING, true, "", "", "sequential"},
		{FEATURE_ITEM_KEY, true, "", "weekly.Q1", ""},
		{FEATURE_EDITOR_COLOR, true, "", "#4f46e5", ""},
		{FEATURE_ITEM_LABEL, false, "", "", ""},
	}
	for _, test := range tests {
		t.Run(string(test.feature), func(t *testing.T) {
			v, found := Locate(&item, test.feature)
			if found != test.found {
				t.Fatalf("unexpected found flag: %v", found)
			}
			if !found {
				return
			}
			if test.componentKey != "" && (v.Component == nil || v.Component.Key != test.componentKey) {
				t.Errorf("unexpected component: %+v", v.Component)
			}
			if v.Text != test.text {
				t.Errorf("unexpected text: %s", v.Text)
			}
			if test.expression != "" && (v.Expression == nil || v.Expression.Name != test.expression) {
				t.Errorf("unexpected expression: %+v", v.Expression)
			}
		})
	}
}

func TestLocateEdgeCases(t *testing.T) {
	t.Run("nil item", func(t *testing.T) {
		if _, found := Locate(nil, FEATURE_TITLE); found {
			t.Error("unexpected feature on nil item")
		}
	})

	t.Run("item without components", func(t *testing.T) {
		item := studyTypes.SurveyItem{Key: "weekly.G", Items: []studyTypes.SurveyItem{}}
		for _, f := range []Feature{FEATURE_TITLE, FEATURE_TOP_CONTENT, FEATURE_BOTTOM_CONTENT, FEATURE_COMPONENT_ORDERING} {
			if _, found := Locate(&item, f); found {
				t.Errorf("unexpected %s on group", f)
			}
		}
	})

	t.Run("no response group", func(t *testing.T) {
		item := studyTypes.SurveyItem{Key: "weekly.D", Components: &studyTypes.ItemComponent{
			Role: studyTypes.ITEM_COMPONENT_ROLE_ROOT,
			Items: []studyTypes.ItemComponent{
				{Role: studyTypes.ITEM_COMPONENT_ROLE_TITLE},
				{Role: studyTypes.ITEM_COMPONENT_ROLE_TEXT, Key: "only"},
			},
		}}
		if c := GetTopContent(&item); c == nil || c.Key != "only" {
			t.Errorf("unexpected top content: %+v", c)
		}
		if c := GetBottomContent(&item); c != nil {
			t.Errorf("unexpected bottom content: %+v", c)
		}
	})

	t.Run("returned values do not alias the item", func(t *testing.T) {
		item := mockQuestion()
		v, _ := Locate(&item, FEATURE_TITLE)
		v.Component.Content[0].Parts[0].Str = "changed"
		c, _ := Locate(&item, FEATURE_DISPLAY_CONDITION)
		c.Expression.Name = "changed"
		if item.Components.Items[0].Content[0].Parts[0].Str != "How are you?" || item.Condition.Name != "isDefined" {
			t.Error("item modified through located feature")
		}
	})

	t.Run("unknown feature", func(t *testing.T) {
		item := mockQuestion()
		if _, found := Locate(&item, Feature("nothing")); found {
			t.Error("unexpected feature")
		}
	})
}

func TestLocalisedText(t *testing.T) {
	content := []studyTypes.LocalisedObject{
		{Code: "de", Parts: []studyTypes.ExpressionArg{str("Hallo")}},
		{Code: "en", Parts: []studyTypes.ExpressionArg{
			str("Score: "),
			{DType: "num", Num: 3},
			str(" of "),
			{DType: "exp", Exp: &studyTypes.Expression{Name: "getAttribute"}},
		}},
	}

	text, err := LocalisedText(content, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Score: <num> of <exp>" {
		t.Errorf("unexpected text: %s", text)
	}
	if _, err := LocalisedText(content, "fr"); !errors.Is(err, ErrTranslationMissing) {
		t.Errorf("expected missing translation, got %v", err)
	}
}

func TestComponentText(t *testing.T) {
	t.Run("own content", func(t *testing.T) {
		comp := &studyTypes.ItemComponent{Content: textContent("en", str("Title"))}
		if text, err := ComponentText(comp, "en"); err != nil || text != "Title" {
			t.Errorf("unexpected result: %s, %v", text, err)
		}
	})

	t.Run("text parts in children", func(t *testing.T) {
		comp := &studyTypes.ItemComponent{Items: []studyTypes.ItemComponent{
			{Content: textContent("en", str("Part one, "))},
			{Content: textContent("en", str("part two"))},
		}}
		if text, err := ComponentText(comp, "en"); err != nil || text != "Part one, part two" {
			t.Errorf("unexpected result: %s, %v", text, err)
		}
		if _, err := ComponentText(comp, "de"); !errors.Is(err, ErrTranslationMissing) {
			t.Errorf("expected missing translation, got %v", err)
		}
	})

	t.Run("nil component", func(t *testing.T) {
		if _, err := ComponentText(nil, "en"); err == nil {
			t.Error("expected error")
		}
	})
}
