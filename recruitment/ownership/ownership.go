// Package ownership decides whether a requester may act on an owned record.
package ownership

import (
	"net/http"

	"github.com/Abraxas-365/hirekit/pkg/errx"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
)

var ErrRegistry = errx.NewRegistry("OWNERSHIP")

var CodeForbidden = ErrRegistry.Register("FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "Requester does not own this resource")

func ErrForbidden() *errx.Error {
	return ErrRegistry.New(CodeForbidden)
}

// Authorize succeeds only when requester is the owner. Empty identities never match.
func Authorize(owner, requester kernel.UserID) error {
	if owner.IsEmpty() || requester.IsEmpty() || owner != requester {
		return ErrForbidden()
	}
	return nil
}

// IsOwner is the boolean form of Authorize
func IsOwner(owner, requester kernel.UserID) bool {
	return Authorize(owner, requester) == nil
}
