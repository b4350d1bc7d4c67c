package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark bodies
	KeyPrefixBookmark = "coursemark:bookmark:"
	// KeyPrefixLookup is the prefix for find-or-create lookup keys
	KeyPrefixLookup = "coursemark:lookup:"
	// KeyPrefixOwner is the prefix for per-owner bookmark ID sets
	KeyPrefixOwner = "coursemark:owner:"
)

// BookmarkKey returns the Redis key for a bookmark
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// OwnerKey returns the Redis key for the set of an owner's bookmark IDs
func OwnerKey(owner string) string {
	return KeyPrefixOwner + owner
}

// LookupKey returns the key claimed by the first bookmark with a given
// fingerprint; its value is that bookmark's ID.
func LookupKey(fingerprint string) string {
	return KeyPrefixLookup + fingerprint
}
