package auth

// Actor identifies the authenticated user behind a request. It is built by
// the middleware from verified token claims and passed explicitly into every
// lifecycle-manager call; no manager reads ambient session state.
type Actor struct {
	UserID string
	Email  string
}
