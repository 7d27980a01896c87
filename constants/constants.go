package constants

// Fiber context locals keys set by the auth middleware.
const (
	LocalsUser     = "user"
	LocalsIdentity = "identity"
)

// Cookie carrying the bearer token when no Authorization header is present.
const AccessCookie = "access"
