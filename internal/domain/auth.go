package domain

import "time"

// Token represents issued authentication token metadata. The raw signed
// string itself is only tracked by the whitelist store.
type Token struct {
	SubjectID string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// WhitelistEntry records a currently-honored token value. Presence in the
// whitelist is what keeps an issued token usable; absence means revoked or
// never issued, regardless of the token's own expiry claim.
type WhitelistEntry struct {
	Token     string
	CreatedAt time.Time
}
