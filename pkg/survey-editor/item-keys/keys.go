package itemkeys

import "strings"

const KEY_SEPARATOR = "."

// ParentKeyOf returns the full key of the parent item, or "" for a root level key.
func ParentKeyOf(fullKey string) string {
	i := strings.LastIndex(fullKey, KEY_SEPARATOR)
	if i < 0 {
		return ""
	}
	return fullKey[:i]
}

// LocalKeyOf returns the last segment of the key.
func LocalKeyOf(fullKey string) string {
	i := strings.LastIndex(fullKey, KEY_SEPARATOR)
	if i < 0 {
		return fullKey
	}
	return fullKey[i+1:]
}

func JoinKey(parentKey string, localKey string) string {
	if parentKey == "" {
		return localKey
	}
	return parentKey + KEY_SEPARATOR + localKey
}

func SplitKey(fullKey string) []string {
	if fullKey == "" {
		return []string{}
	}
	return strings.Split(fullKey, KEY_SEPARATOR)
}

// KeyDepth is the number of segments in the key, the root has depth 1.
func KeyDepth(fullKey string) int {
	if fullKey == "" {
		return 0
	}
	return strings.Count(fullKey, KEY_SEPARATOR) + 1
}

// IsSameOrDescendantKey reports whether key equals ancestorKey or lies below it.
// Only whole segments are compared: "root.q10" is not below "root.q1".
func IsSameOrDescendantKey(key string, ancestorKey string) bool {
	if key == ancestorKey {
		return true
	}
	return ancestorKey != "" && strings.HasPrefix(key, ancestorKey+KEY_SEPARATOR)
}

// ReplaceKeyPrefix swaps the leading oldPrefix segments of key for newPrefix.
// ok is false if key is not oldPrefix or one of its descendants.
func ReplaceKeyPrefix(key string, oldPrefix string, newPrefix string) (newKey string, ok bool) {
	if !IsSameOrDescendantKey(key, oldPrefix) {
		return key, false
	}
	return newPrefix + key[len(oldPrefix):], true
}

func IsValidLocalKey(localKey string) bool {
	return localKey != "" && !strings.Contains(localKey, KEY_SEPARATOR)
}
