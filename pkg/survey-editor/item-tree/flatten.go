package itemtree

import (
	"fmt"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
)

// FlatItem is one entry of the pre-order listing of a survey definition.
type FlatItem struct {
	Key     string `json:"key"`
	IsGroup bool   `json:"isGroup"`
	// Depth is relative to the item the listing started from.
	Depth int `json:"depth"`
}

// Flatten lists the item and all its descendants in pre-order. The result is not cached,
// call it again after changing the tree.
func Flatten(item *studyTypes.SurveyItem) []FlatItem {
	if item == nil {
		return []FlatItem{}
	}
	return flattenItem(item, 0, []FlatItem{})
}

func flattenItem(item *studyTypes.SurveyItem, depth int, list []FlatItem) []FlatItem {
	list = append(list, FlatItem{Key: item.Key, IsGroup: item.IsGroup(), Depth: depth})
	for i := range item.Items {
		list = flattenItem(&item.Items[i], depth+1, list)
	}
	return list
}

// Flatten lists the whole tree starting with the root.
func (t *ItemTree) Flatten() []FlatItem {
	list, _ := t.FlattenFrom(t.rootKey)
	return list
}

// FlattenFrom lists the item at fullKey and its descendants.
func (t *ItemTree) FlattenFrom(fullKey string) ([]FlatItem, error) {
	if !t.Has(fullKey) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, fullKey)
	}
	return t.flattenNode(fullKey, 0, []FlatItem{}), nil
}

func (t *ItemTree) flattenNode(fullKey string, depth int, list []FlatItem) []FlatItem {
	n := t.mustGetNode(fullKey)
	list = append(list, FlatItem{Key: fullKey, IsGroup: n.isGroup, Depth: depth})
	for _, childKey := range n.children {
		list = t.flattenNode(childKey, depth+1, list)
	}
	return list
}
