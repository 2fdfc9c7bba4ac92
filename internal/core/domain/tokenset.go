package domain

// TokenSet is the ordered collection of currently-valid refresh tokens issued
// to a user. Membership in the set is what makes a cryptographically valid
// refresh token actually usable: a token that verifies but is no longer in the
// owning user's set has been rotated out or revoked, and presenting it is
// treated as a reuse signal.
//
// All operations return a new set; the receiver is never mutated. This keeps
// the membership invariant testable without a database.
type TokenSet []string

// Add returns a new set with token appended.
func (s TokenSet) Add(token string) TokenSet {
	out := make(TokenSet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, token)
}

// RemoveOne returns a new set with the first occurrence of token removed.
// If token is absent the result is an unchanged copy.
func (s TokenSet) RemoveOne(token string) TokenSet {
	out := make(TokenSet, 0, len(s))
	removed := false
	for _, t := range s {
		if !removed && t == token {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out
}

// Clear returns an empty set.
func (s TokenSet) Clear() TokenSet {
	return TokenSet{}
}

// Contains reports whether token is currently in the set.
func (s TokenSet) Contains(token string) bool {
	for _, t := range s {
		if t == token {
			return true
		}
	}
	return false
}
