package redis

import "fmt"

const (
	// KeyPrefixEntry is the prefix for single-entry keys
	KeyPrefixEntry = "snote:entry:"
	// KeyEntryList holds the JSON-encoded list of all entries, newest first
	KeyEntryList = "snote:entries:list"
	// KeyGeneration counts invalidations; cache fills commit only while it is unchanged
	KeyGeneration = "snote:generation"
	// KeyPrefixAll matches every key owned by snote
	KeyPrefixAll = "snote:"
)

// EntryKey returns the Redis key for an entry by ID
func EntryKey(id string) string {
	return KeyPrefixEntry + id
}

// ExtractEntryID extracts the entry ID from a Redis key
func ExtractEntryID(key string) (string, error) {
	if len(key) <= len(KeyPrefixEntry) || key[:len(KeyPrefixEntry)] != KeyPrefixEntry {
		return "", fmt.Errorf("invalid entry key: %s", key)
	}
	return key[len(KeyPrefixEntry):], nil
}
