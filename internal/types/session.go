// README: Signed-in caller identity resolved by the auth middleware.
package types

// Session identifies the signed-in passenger. UID owns the active trip slot and history.
type Session struct {
	UID         ID     `json:"uid"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	// Role is empty for passengers; "driver" and "admin" come from the token's role claim.
	Role string `json:"role,omitempty"`
}
