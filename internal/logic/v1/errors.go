// Package v1 implements the authentication and session business logic.
//
// Authenticate and Logout never return Go errors: validation and credential
// failures come back as ok:false responses, and unexpected backend failures
// are folded into a generic message, so the transport layer always gets a
// well-formed response body.
//
// Level guards are the opposite: they return the sentinel errors below,
// which the web layer checks with errors.Is and maps to a status code:
//
//	switch {
//	case errors.Is(err, logicv1.ErrNotAuthenticated):
//	    c.JSON(http.StatusUnauthorized, ...)
//	case errors.Is(err, logicv1.ErrForbidden):
//	    c.JSON(http.StatusForbidden, ...)
//	}
package v1

import "errors"

// Sentinel errors returned by level guards. Their text is the user-facing
// message, so the two failure modes stay distinguishable to callers.
var (
	// ErrNotAuthenticated is returned when no valid session user is present.
	// HTTP Status: 401 Unauthorized
	ErrNotAuthenticated = errors.New("Not authenticated.")

	// ErrForbidden is returned when the session user's level is not in the
	// action's allowed set.
	// HTTP Status: 403 Forbidden
	ErrForbidden = errors.New("Forbidden: insufficient level.")
)
