package redis

const (
	// KeyPublicCatalog holds the JSON of GET /api/categories-with-links.
	KeyPublicCatalog = "raya:catalog:public"
	// KeyPrefixRevoked is the prefix for revoked token IDs (jti).
	KeyPrefixRevoked = "raya:revoked:"
)

// RevokedKey returns the Redis key marking token jti as revoked.
func RevokedKey(jti string) string {
	return KeyPrefixRevoked + jti
}
