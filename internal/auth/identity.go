// Package auth issues and validates sessions and hashes passwords.
//
// Callers resolve an Identity once per request and pass it explicitly into
// every service call; nothing in this package stores identity on a context.
package auth

// Identity is the resolved session of the caller. The zero value is an
// anonymous caller.
type Identity struct {
	UserID string
}

// Anonymous reports whether the identity carries no user.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// Owns reports whether the identity is the owner with the given user id.
func (i Identity) Owns(ownerID string) bool {
	return !i.Anonymous() && i.UserID == ownerID
}
