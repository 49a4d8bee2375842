package itemoutline

import (
	"bytes"
	"encoding/csv"
	"testing"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	itemtree "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-tree"
	itemtypes "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-types"
)

func mockSurvey() studyTypes.SurveyItem {
	return studyTypes.SurveyItem{
		Key: "weekly",
		Items: []studyTypes.SurveyItem{
			{
				Key:      "weekly.G1",
				Metadata: map[string]string{studyTypes.ITEM_METADATA_KEY_ITEM_LABEL: "Symptoms"},
				Items: []studyTypes.SurveyItem{
					{
						Key: "weekly.G1.Q1",
						Components: &studyTypes.ItemComponent{
							Role: studyTypes.ITEM_COMPONENT_ROLE_ROOT,
							Items: []studyTypes.ItemComponent{
								{Role: studyTypes.ITEM_COMPONENT_ROLE_TITLE, Content: []studyTypes.LocalisedObject{
									{Code: "en", Parts: []studyTypes.ExpressionArg{{DType: "str", Str: "Any fever?"}}},
								}},
								{Role: studyTypes.ITEM_COMPONENT_ROLE_RESPONSE_GROUP, Items: []studyTypes.ItemComponent{
									{Role: studyTypes.ITEM_COMPONENT_ROLE_SINGLE_CHOICE_GROUP},
								}},
							},
						},
					},
				},
			},
			{Key: "weekly.PB", Type: studyTypes.SURVEY_ITEM_TYPE_PAGE_BREAK},
		},
	}
}

func TestBuild(t *testing.T) {
	root := mockSurvey()
	rows := Build(&root, "en")

	if len(rows) != 4 {
		t.Fatalf("unexpected number of rows: %d", len(rows))
	}
	expected := []struct {
		key      string
		depth    int
		itemType string
	}{
		{"weekly", 0, itemtypes.ITEM_TYPE_GROUP},
		{"weekly.G1", 1, itemtypes.ITEM_TYPE_GROUP},
		{"weekly.G1.Q1", 2, itemtypes.ITEM_TYPE_SINGLE_CHOICE},
		{"weekly.PB", 1, itemtypes.ITEM_TYPE_PAGE_BREAK},
	}
	for i, e := range expected {
		if rows[i].Key != e.key || rows[i].Depth != e.depth || rows[i].ItemType != e.itemType {
			t.Errorf("unexpected row %d: %+v", i, rows[i])
		}
	}
	if rows[1].Label != "Symptoms" {
		t.Errorf("unexpected label: %s", rows[1].Label)
	}
	if rows[2].Title != "Any fever?" {
		t.Errorf("unexpected title: %s", rows[2].Title)
	}
	if rows[2].Color != itemtypes.ColorFromKey("weekly.G1.Q1") || rows[3].Color != "" {
		t.Errorf("unexpected colors: %s, %s", rows[2].Color, rows[3].Color)
	}

	t.Run("missing language", func(t *testing.T) {
		rows := Build(&root, "de")
		if rows[2].Title != "" {
			t.Errorf("unexpected title: %s", rows[2].Title)
		}
	})

	t.Run("same as tree", func(t *testing.T) {
		tree, err := itemtree.NewItemTree(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		fromTree := BuildFromTree(tree, "en")
		for i := range rows {
			if rows[i] != fromTree[i] {
				t.Errorf("rows differ: %+v, %+v", rows[i], fromTree[i])
			}
		}
	})
}

func TestWriteCSV(t *testing.T) {
	root := mockSurvey()
	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, Build(&root, "en")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("unexpected number of lines: %d", len(records))
	}
	if records[0][0] != "key" || records[3][0] != "weekly.G1.Q1" || records[3][2] != "false" || records[3][5] != "Any fever?" {
		t.Errorf("unexpected content: %v", records)
	}
}
