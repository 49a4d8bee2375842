package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSurveyItemJSON(t *testing.T) {
	t.Run("empty group keeps items array", func(t *testing.T) {
		item := SurveyItem{Key: "weekly.G1", Items: []SurveyItem{}}
		b, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(b), `"items":[]`) {
			t.Errorf("items missing: %s", string(b))
		}

		var decoded SurveyItem
		if err := json.Unmarshal(b, &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !decoded.IsGroup() {
			t.Error("empty group not recognized after decoding")
		}
	})

	t.Run("single item omits items", func(t *testing.T) {
		item := SurveyItem{Key: "weekly.Q1", Type: SURVEY_ITEM_TYPE_PAGE_BREAK}
		b, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(string(b), `"items"`) {
			t.Errorf("unexpected items field: %s", string(b))
		}

		var decoded SurveyItem
		if err := json.Unmarshal(b, &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if decoded.IsGroup() {
			t.Error("single item decoded as group")
		}
	})

	t.Run("nested empty group", func(t *testing.T) {
		item := SurveyItem{Key: "weekly", Items: []SurveyItem{
			{Key: "weekly.G1", Items: []SurveyItem{}},
		}}
		b, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded SurveyItem
		if err := json.Unmarshal(b, &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(decoded.Items) != 1 || !decoded.Items[0].IsGroup() {
			t.Errorf("unexpected decoded item: %s", string(b))
		}
	})
}

func TestSurveyItemClone(t *testing.T) {
	original := SurveyItem{
		Key:       "weekly.Q1",
		Metadata:  map[string]string{ITEM_METADATA_KEY_EDITOR_COLOR: "#fff"},
		Condition: &Expression{Name: "isDefined", Data: []ExpressionArg{{DType: "exp", Exp: &Expression{Name: "getContext"}}}},
		Components: &ItemComponent{Role: ITEM_COMPONENT_ROLE_ROOT, Items: []ItemComponent{
			{Role: ITEM_COMPONENT_ROLE_TITLE, Content: []LocalisedObject{{Code: "en", Parts: []ExpressionArg{{DType: "str", Str: "Title"}}}}},
		}},
		Validations: []Validation{{Key: "r1", Type: "hard", Rule: Expression{Name: "isDefined"}}},
	}

	c := original.Clone()
	c.Metadata[ITEM_METADATA_KEY_EDITOR_COLOR] = "#000"
	c.Condition.Data[0].Exp.Name = "changed"
	c.Components.Items[0].Content[0].Parts[0].Str = "changed"
	c.Validations[0].Rule.Name = "changed"

	if original.Metadata[ITEM_METADATA_KEY_EDITOR_COLOR] != "#fff" {
		t.Error("metadata shared between clone and original")
	}
	if original.Condition.Data[0].Exp.Name != "getContext" {
		t.Error("condition shared between clone and original")
	}
	if original.Components.Items[0].Content[0].Parts[0].Str != "Title" {
		t.Error("components shared between clone and original")
	}
	if original.Validations[0].Rule.Name != "isDefined" {
		t.Error("validations shared between clone and original")
	}
}

func TestBaseComponentRole(t *testing.T) {
	tests := []struct {
		role     string
		expected string
		known    bool
	}{
		{"singleChoiceGroup", "singleChoiceGroup", true},
		{"singleChoiceGroup:horizontal", "singleChoiceGroup", true},
		{":broken", "", false},
		{"somethingNew", "somethingNew", false},
	}
	for _, test := range tests {
		if r := BaseComponentRole(test.role); r != test.expected {
			t.Errorf("unexpected base role for %s: %s", test.role, r)
		}
		if k := IsKnownComponentRole(test.role); k != test.known {
			t.Errorf("unexpected known flag for %s: %v", test.role, k)
		}
	}
}
