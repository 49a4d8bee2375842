package itemtree

import (
	"fmt"
	"log/slog"
	"slices"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	itemkeys "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-keys"
)

// ItemTree holds a survey definition as a map of items by full key. Groups only store the keys of
// their children, so moving a subtree never copies or aliases items.
//
// An ItemTree is not safe for concurrent use.
type ItemTree struct {
	rootKey string
	nodes   map[string]*treeNode
}

type treeNode struct {
	// item without children, Items is always nil
	item     studyTypes.SurveyItem
	isGroup  bool
	children []string
}

// NewItemTree loads a survey definition. The input is copied and checked for key consistency.
func NewItemTree(root studyTypes.SurveyItem) (*ItemTree, error) {
	if !itemkeys.IsValidLocalKey(root.Key) {
		return nil, &StructureError{Key: root.Key, Reason: "root key must be a single non-empty segment"}
	}

	nodes := map[string]*treeNode{}
	if err := collectSubtree(root.Clone(), "", nodes); err != nil {
		return nil, err
	}
	return &ItemTree{
		rootKey: root.Key,
		nodes:   nodes,
	}, nil
}

func (t *ItemTree) RootKey() string {
	return t.rootKey
}

// Len is the number of items including the root.
func (t *ItemTree) Len() int {
	return len(t.nodes)
}

func (t *ItemTree) Has(fullKey string) bool {
	_, ok := t.nodes[fullKey]
	return ok
}

// Root returns the whole survey definition as plain data. The result does not share memory with the tree.
func (t *ItemTree) Root() studyTypes.SurveyItem {
	return t.buildItem(t.rootKey)
}

// FindItem returns a copy of the item with its descendants.
func (t *ItemTree) FindItem(fullKey string) (*studyTypes.SurveyItem, error) {
	if !t.Has(fullKey) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, fullKey)
	}
	item := t.buildItem(fullKey)
	return &item, nil
}

func (t *ItemTree) ParentOf(fullKey string) (string, error) {
	if !t.Has(fullKey) {
		return "", fmt.Errorf("%w: %s", ErrItemNotFound, fullKey)
	}
	if fullKey == t.rootKey {
		return "", fmt.Errorf("%w: %s has no parent", ErrRootItem, fullKey)
	}
	return itemkeys.ParentKeyOf(fullKey), nil
}

// ChildKeys lists the full keys of the children of a group in their order.
func (t *ItemTree) ChildKeys(parentKey string) ([]string, error) {
	n, ok := t.nodes[parentKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, parentKey)
	}
	if !n.isGroup {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParent, parentKey)
	}
	return slices.Clone(n.children), nil
}

// AddChild appends the item to the group at parentKey. The local key of item.Key is kept, the
// parent part is taken from parentKey, and descendants of the item are relabelled accordingly.
// The stored item is returned.
func (t *ItemTree) AddChild(item studyTypes.SurveyItem, parentKey string) (*studyTypes.SurveyItem, error) {
	return t.InsertChildAt(item, parentKey, -1)
}

// InsertChildAt works like AddChild but places the item at index. An index outside the child list appends.
func (t *ItemTree) InsertChildAt(item studyTypes.SurveyItem, parentKey string, index int) (*studyTypes.SurveyItem, error) {
	parent, ok := t.nodes[parentKey]
	if !ok {
		return nil, fmt.Errorf("%w: parent %s", ErrItemNotFound, parentKey)
	}
	if !parent.isGroup {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParent, parentKey)
	}
	localKey := itemkeys.LocalKeyOf(item.Key)
	if !itemkeys.IsValidLocalKey(localKey) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidKey, item.Key)
	}
	newKey := itemkeys.JoinKey(parentKey, localKey)
	if t.Has(newKey) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, newKey)
	}

	newItem := item.Clone()
	relabelItem(&newItem, item.Key, newKey)

	staged := map[string]*treeNode{}
	if err := collectSubtree(newItem, parentKey, staged); err != nil {
		return nil, err
	}

	for k, n := range staged {
		t.nodes[k] = n
	}
	if index < 0 || index > len(parent.children) {
		index = len(parent.children)
	}
	parent.children = slices.Insert(parent.children, index, newKey)

	stored := t.buildItem(newKey)
	return &stored, nil
}

// UpdateItem replaces the item stored under item.Key, keeping its position. Keys cannot be changed
// this way, use ChangeKey or MoveItem for that.
func (t *ItemTree) UpdateItem(item studyTypes.SurveyItem) error {
	if !t.Has(item.Key) {
		return fmt.Errorf("%w: %s", ErrItemNotFound, item.Key)
	}

	parentKey := ""
	if item.Key != t.rootKey {
		parentKey = itemkeys.ParentKeyOf(item.Key)
	}
	staged := map[string]*treeNode{}
	if err := collectSubtree(item.Clone(), parentKey, staged); err != nil {
		return err
	}

	t.removeSubtree(item.Key)
	for k, n := range staged {
		t.nodes[k] = n
	}
	return nil
}

// DeleteItem removes the item and all its descendants.
func (t *ItemTree) DeleteItem(fullKey string) error {
	if fullKey == t.rootKey {
		return fmt.Errorf("%w: cannot delete %s", ErrRootItem, fullKey)
	}
	if !t.Has(fullKey) {
		return fmt.Errorf("%w: %s", ErrItemNotFound, fullKey)
	}

	parent := t.mustGetNode(itemkeys.ParentKeyOf(fullKey))
	parent.children = removeKey(parent.children, fullKey)
	t.removeSubtree(fullKey)
	return nil
}

// ChangeKey renames the local key of an item and relabels all descendants. newFullKey must keep the
// parent part of oldFullKey. References to the old key in conditions or validations of other items
// are not updated.
func (t *ItemTree) ChangeKey(oldFullKey string, newFullKey string) error {
	if !t.Has(oldFullKey) {
		return fmt.Errorf("%w: %s", ErrItemNotFound, oldFullKey)
	}
	if oldFullKey == newFullKey {
		return nil
	}

	parentKey := itemkeys.ParentKeyOf(oldFullKey)
	if itemkeys.ParentKeyOf(newFullKey) != parentKey {
		return fmt.Errorf("%w: '%s' must stay below '%s', use move to change the parent", ErrInvalidKey, newFullKey, parentKey)
	}
	if !itemkeys.IsValidLocalKey(itemkeys.LocalKeyOf(newFullKey)) {
		return fmt.Errorf("%w: '%s'", ErrInvalidKey, newFullKey)
	}
	if t.Has(newFullKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, newFullKey)
	}

	t.relabelSubtree(oldFullKey, newFullKey)
	if oldFullKey == t.rootKey {
		t.rootKey = newFullKey
	} else {
		parent := t.mustGetNode(parentKey)
		parent.children = replaceKey(parent.children, oldFullKey, newFullKey)
	}
	slog.Debug("survey item key changed", slog.String("oldKey", oldFullKey), slog.String("newKey", newFullKey))
	return nil
}

// MoveItem re-parents an item to the end of the group at newParentKey. All checks run before the tree
// is touched, so a rejected move leaves the tree unchanged. As with ChangeKey, references in other
// items are not updated.
func (t *ItemTree) MoveItem(newParentKey string, oldFullKey string) error {
	if !t.Has(oldFullKey) {
		return fmt.Errorf("%w: %s", ErrItemNotFound, oldFullKey)
	}
	if oldFullKey == t.rootKey {
		return fmt.Errorf("%w: cannot move %s", ErrRootItem, oldFullKey)
	}
	newParent, ok := t.nodes[newParentKey]
	if !ok {
		return fmt.Errorf("%w: target parent %s", ErrItemNotFound, newParentKey)
	}
	if itemkeys.IsSameOrDescendantKey(newParentKey, oldFullKey) {
		return fmt.Errorf("%w: %s into %s", ErrCyclicMove, oldFullKey, newParentKey)
	}
	if !newParent.isGroup {
		return fmt.Errorf("%w: %s", ErrInvalidParent, newParentKey)
	}
	oldParentKey := itemkeys.ParentKeyOf(oldFullKey)
	if newParentKey == oldParentKey {
		return fmt.Errorf("%w: %s", ErrSameParent, newParentKey)
	}
	newFullKey := itemkeys.JoinKey(newParentKey, itemkeys.LocalKeyOf(oldFullKey))
	if t.Has(newFullKey) {
		return fmt.Errorf("%w: %s, rename the item before moving it", ErrDuplicateKey, newFullKey)
	}

	oldParent := t.mustGetNode(oldParentKey)
	oldParent.children = removeKey(oldParent.children, oldFullKey)
	t.relabelSubtree(oldFullKey, newFullKey)
	newParent.children = append(newParent.children, newFullKey)
	return nil
}

// ReorderItem moves an item to index within its current parent.
func (t *ItemTree) ReorderItem(fullKey string, newIndex int) error {
	if fullKey == t.rootKey {
		return fmt.Errorf("%w: cannot reorder %s", ErrRootItem, fullKey)
	}
	if !t.Has(fullKey) {
		return fmt.Errorf("%w: %s", ErrItemNotFound, fullKey)
	}
	parent := t.mustGetNode(itemkeys.ParentKeyOf(fullKey))
	if newIndex < 0 || newIndex >= len(parent.children) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, newIndex)
	}

	children := removeKey(parent.children, fullKey)
	parent.children = slices.Insert(children, newIndex, fullKey)
	return nil
}

// DuplicateItem copies the item with its descendants under newLocalKey and places the copy right after the source.
func (t *ItemTree) DuplicateItem(fullKey string, newLocalKey string) (*studyTypes.SurveyItem, error) {
	if fullKey == t.rootKey {
		return nil, fmt.Errorf("%w: cannot duplicate %s", ErrRootItem, fullKey)
	}
	if !t.Has(fullKey) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, fullKey)
	}

	if !itemkeys.IsValidLocalKey(newLocalKey) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidKey, newLocalKey)
	}

	parentKey := itemkeys.ParentKeyOf(fullKey)
	parent := t.mustGetNode(parentKey)
	copied := t.buildItem(fullKey)
	relabelItem(&copied, fullKey, itemkeys.JoinKey(parentKey, newLocalKey))

	return t.InsertChildAt(copied, parentKey, slices.Index(parent.children, fullKey)+1)
}

func (t *ItemTree) mustGetNode(fullKey string) *treeNode {
	n, ok := t.nodes[fullKey]
	if !ok {
		panic(&StructureError{Key: fullKey, Reason: "referenced item missing from tree"})
	}
	return n
}

func (t *ItemTree) buildItem(fullKey string) studyTypes.SurveyItem {
	n := t.mustGetNode(fullKey)
	item := n.item.Clone()
	if n.isGroup {
		item.Items = make([]studyTypes.SurveyItem, 0, len(n.children))
		for _, childKey := range n.children {
			item.Items = append(item.Items, t.buildItem(childKey))
		}
	}
	return item
}

// subtreeKeys lists fullKey and all its descendants in pre-order.
func (t *ItemTree) subtreeKeys(fullKey string) []string {
	keys := []string{fullKey}
	n := t.mustGetNode(fullKey)
	for _, childKey := range n.children {
		keys = append(keys, t.subtreeKeys(childKey)...)
	}
	return keys
}

func (t *ItemTree) removeSubtree(fullKey string) {
	for _, k := range t.subtreeKeys(fullKey) {
		delete(t.nodes, k)
	}
}

// relabelSubtree rewrites the key prefix of an item and its descendants. The parent's child list is not touched.
func (t *ItemTree) relabelSubtree(oldKey string, newKey string) {
	keys := t.subtreeKeys(oldKey)
	moved := make([]*treeNode, len(keys))
	for i, k := range keys {
		moved[i] = t.nodes[k]
		delete(t.nodes, k)
	}
	for _, n := range moved {
		n.item.Key, _ = itemkeys.ReplaceKeyPrefix(n.item.Key, oldKey, newKey)
		for i, childKey := range n.children {
			n.children[i], _ = itemkeys.ReplaceKeyPrefix(childKey, oldKey, newKey)
		}
		t.nodes[n.item.Key] = n
	}
}

// collectSubtree validates the keys of item and its descendants and adds them to nodes.
// An empty parentKey marks the root.
func collectSubtree(item studyTypes.SurveyItem, parentKey string, nodes map[string]*treeNode) error {
	if parentKey != "" && itemkeys.ParentKeyOf(item.Key) != parentKey {
		return &StructureError{Key: item.Key, Reason: fmt.Sprintf("key is not below parent '%s'", parentKey)}
	}
	if !itemkeys.IsValidLocalKey(itemkeys.LocalKeyOf(item.Key)) {
		return &StructureError{Key: item.Key, Reason: "empty local key"}
	}
	if _, exists := nodes[item.Key]; exists {
		return &StructureError{Key: item.Key, Reason: "duplicate key"}
	}

	n := &treeNode{
		isGroup: item.IsGroup(),
	}
	children := item.Items
	n.item = item
	n.item.Items = nil
	nodes[item.Key] = n

	if n.isGroup {
		n.children = make([]string, 0, len(children))
		for _, child := range children {
			if err := collectSubtree(child, item.Key, nodes); err != nil {
				return err
			}
			n.children = append(n.children, child.Key)
		}
	}
	return nil
}

// relabelItem rewrites keys in a plain item tree. Keys not below oldKey are left as they are.
func relabelItem(item *studyTypes.SurveyItem, oldKey string, newKey string) {
	item.Key, _ = itemkeys.ReplaceKeyPrefix(item.Key, oldKey, newKey)
	for i := range item.Items {
		relabelItem(&item.Items[i], oldKey, newKey)
	}
}

func removeKey(keys []string, key string) []string {
	return slices.DeleteFunc(keys, func(k string) bool { return k == key })
}

func replaceKey(keys []string, oldKey string, newKey string) []string {
	for i, k := range keys {
		if k == oldKey {
			keys[i] = newKey
		}
	}
	return keys
}
