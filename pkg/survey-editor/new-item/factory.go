package newitem

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"

	studyTypes "github.com/case-framework/survey-editor-backend/pkg/study/types"
	itemkeys "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-keys"
	itemtypes "github.com/case-framework/survey-editor-backend/pkg/survey-editor/item-types"
)

const (
	MAX_KEY_GENERATION_ATTEMPTS = 20
	GENERATED_KEY_RANDOM_CHARS  = 3

	keyFirstChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	keyOtherChars = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	ErrUnknownItemType     = errors.New("unknown item type")
	ErrParentNotGroup      = errors.New("parent is not a group")
	ErrKeyGenerationFailed = errors.New("could not generate unique item key")
)

// ItemConstructor builds the skeleton of a new item with the given full key below parent.
type ItemConstructor func(fullKey string, parent *studyTypes.SurveyItem) studyTypes.SurveyItem

type ItemFactory struct {
	rng          *rand.Rand
	constructors map[string]ItemConstructor
}

// NewItemFactory creates a factory with constructors for all item types the editor can create.
// rng may be nil, in which case a randomly seeded generator is used.
func NewItemFactory(rng *rand.Rand) *ItemFactory {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	f := &ItemFactory{
		rng:          rng,
		constructors: map[string]ItemConstructor{},
	}
	f.Register(itemtypes.ITEM_TYPE_GROUP, newGroup)
	f.Register(itemtypes.ITEM_TYPE_PAGE_BREAK, newPageBreak)
	f.Register(itemtypes.ITEM_TYPE_SURVEY_END, newSurveyEnd)
	f.Register(itemtypes.ITEM_TYPE_DISPLAY, newDisplayItem)
	for _, d := range itemtypes.ItemTypes() {
		if itemtypes.IsQuestionType(d.Key) {
			f.Register(d.Key, newQuestion(d.Key))
		}
	}
	return f
}

// Register adds or replaces the constructor for an item type.
func (f *ItemFactory) Register(itemType string, constructor ItemConstructor) {
	f.constructors[itemType] = constructor
}

func (f *ItemFactory) SupportedTypes() []string {
	return slices.Sorted(maps.Keys(f.constructors))
}

func (f *ItemFactory) Supports(itemType string) bool {
	_, ok := f.constructors[itemType]
	return ok
}

// GenerateLocalKey returns a random local key not used by any child of parent.
func (f *ItemFactory) GenerateLocalKey(parent *studyTypes.SurveyItem) (string, error) {
	if !parent.IsGroup() {
		return "", ErrParentNotGroup
	}
	used := make(map[string]bool, len(parent.Items))
	for _, child := range parent.Items {
		used[child.Key] = true
	}

	for i := 0; i < MAX_KEY_GENERATION_ATTEMPTS; i++ {
		candidate := f.randomKey()
		if !used[itemkeys.JoinKey(parent.Key, candidate)] {
			return candidate, nil
		}
	}
	slog.Error("key generation exceeded attempts", slog.String("parentKey", parent.Key), slog.Int("attempts", MAX_KEY_GENERATION_ATTEMPTS))
	return "", fmt.Errorf("%w below %s", ErrKeyGenerationFailed, parent.Key)
}

func (f *ItemFactory) randomKey() string {
	b := make([]byte, 0, GENERATED_KEY_RANDOM_CHARS+1)
	b = append(b, keyFirstChars[f.rng.IntN(len(keyFirstChars))])
	for i := 0; i < GENERATED_KEY_RANDOM_CHARS; i++ {
		b = append(b, keyOtherChars[f.rng.IntN(len(keyOtherChars))])
	}
	return string(b)
}

// CreateItem builds a new item of itemType with a fresh key below parent. The item is not added to parent.
func (f *ItemFactory) CreateItem(itemType string, parent *studyTypes.SurveyItem) (*studyTypes.SurveyItem, error) {
	constructor, ok := f.constructors[itemType]
	if !ok {
		slog.Warn("cannot create item of unknown type", slog.String("itemType", itemType))
		return nil, fmt.Errorf("%w: %s", ErrUnknownItemType, itemType)
	}
	localKey, err := f.GenerateLocalKey(parent)
	if err != nil {
		return nil, err
	}

	item := constructor(itemkeys.JoinKey(parent.Key, localKey), parent)
	slog.Debug("new item created", slog.String("itemKey", item.Key), slog.String("itemType", itemType))
	return &item, nil
}
