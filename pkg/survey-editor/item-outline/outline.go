package itemoutline

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	itemfeatures "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-features"
	itemtree "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-tree"
	itemtypes "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-types"
)

type OutlineRow struct {
	Key      string `json:"key"`
	Depth    int    `json:"depth"`
	IsGroup  bool   `json:"isGroup"`
	ItemType string `json:"itemType"`
	Label    string `json:"label,omitempty"`
	Title    string `json:"title,omitempty"`
	Color    string `json:"color,omitempty"`
}

// Build lists the items of the survey definition in pre-order with their classification and title in lang.
func Build(root *studyTypes.SurveyItem, lang string) []OutlineRow {
	rows := []OutlineRow{}
	appendRows(root, 0, lang, &rows)
	return rows
}

func appendRows(item *studyTypes.SurveyItem, depth int, lang string, rows *[]OutlineRow) {
	if item == nil {
		return
	}
	row := OutlineRow{
		Key:      item.Key,
		Depth:    depth,
		IsGroup:  item.IsGroup(),
		ItemType: itemtypes.ClassifyItemType(item),
		Label:    item.Metadata[studyTypes.ITEM_METADATA_KEY_ITEM_LABEL],
		Color:    itemtypes.ItemColor(item),
	}
	if title := itemfeatures.GetTitleComponent(item); title != nil && lang != "" {
		text, err := itemfeatures.ComponentText(title, lang)
		if err != nil {
			slog.Debug("title not found for item", slog.String("itemKey", item.Key), slog.String("lang", lang))
		}
		row.Title = text
	}
	*rows = append(*rows, row)

	for i := range item.Items {
		appendRows(&item.Items[i], depth+1, lang, rows)
	}
}

// BuildFromTree is Build on the current state of an item tree.
func BuildFromTree(tree *itemtree.ItemTree, lang string) []OutlineRow {
	root := tree.Root()
	return Build(&root, lang)
}

func WriteCSV(writer io.Writer, rows []OutlineRow) error {
	header := []string{
		"key", "depth", "isGroup", "itemType", "label", "title", "color",
	}

	w := csv.NewWriter(writer)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		line := []string{
			row.Key,
			strconv.Itoa(row.Depth),
			strconv.FormatBool(row.IsGroup),
			row.ItemType,
			row.Label,
			row.Title,
			row.Color,
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
