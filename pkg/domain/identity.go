package domain

// Identity is the resolved caller identity attached to a request after
// authentication. It lives only for the duration of a single request and is
// never persisted.
type Identity struct {
	ID    string `json:"uid"`
	Email string `json:"email,omitempty"`
}
