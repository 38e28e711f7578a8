package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixCategory is the prefix for category keys
	KeyPrefixCategory = "mapmarks:category:"
	// KeyAllCategories is the key for the set of all category IDs
	KeyAllCategories = "mapmarks:categories:all"
	// KeyCategoryOrder is the list of category IDs in display order
	KeyCategoryOrder = "mapmarks:categories:order"

	bookmarksSuffix = ":bookmarks"
)

// CategoryKey returns the Redis key for a category's metadata
func CategoryKey(id string) string {
	return KeyPrefixCategory + id
}

// CategoryBookmarksKey returns the Redis list holding a category's records
func CategoryBookmarksKey(id string) string {
	return KeyPrefixCategory + id + bookmarksSuffix
}

// AllCategoriesKey returns the key for the set of all category IDs
func AllCategoriesKey() string {
	return KeyAllCategories
}

// CategoryOrderKey returns the key for the ordered list of category IDs
func CategoryOrderKey() string {
	return KeyCategoryOrder
}

// ExtractCategoryID extracts the category ID from a metadata or bookmarks key
func ExtractCategoryID(key string) (string, error) {
	if !strings.HasPrefix(key, KeyPrefixCategory) || len(key) <= len(KeyPrefixCategory) {
		return "", fmt.Errorf("invalid category key: %s", key)
	}
	id := strings.TrimSuffix(key[len(KeyPrefixCategory):], bookmarksSuffix)
	if id == "" {
		return "", fmt.Errorf("invalid category key: %s", key)
	}
	return id, nil
}
