package report

// UnauthorizedMessage is returned verbatim to callers without the operator role.
const UnauthorizedMessage = "You are not authorized to generate sales reports."

// Identity is the caller's claim as supplied by the identity provider.
type Identity struct {
	Authenticated bool
	Subject       string
	Role          string
}

// Authorize admits the caller only when a claim is present and carries privilegedRole.
func Authorize(id Identity, privilegedRole string) error {
	if !id.Authenticated || id.Role != privilegedRole {
		return fail(KindUnauthenticated, StageAuthorizing, UnauthorizedMessage, nil)
	}
	return nil
}
