package auth

import "context"

// Logout is stateless on the server: the signed credential is simply
// dropped by the client when the cookie is cleared. The user row is
// unaffected; this only records the event.
func (s *Service) Logout(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	s.audit("logout", map[string]string{"user_id": userID})
}
