package contextx

// Key is a private type to avoid collisions in request context keys.
type Key string

// UserKey is the context key under which the authorization gate stores the resolved account.
const UserKey Key = "user"
