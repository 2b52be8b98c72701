package model

// StepAck acknowledges a validated registration step that did not yet
// materialize an account.
type StepAck struct {
	Step    int    `json:"step"`
	Message string `json:"message"`
}

// AuthResponse is the uniform success shape of registration step 4 and all
// three login methods.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *PublicUser `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ForgotPasswordMessage is returned byte-identically whether or not the
// phone number belongs to an account.
const ForgotPasswordMessage = "If an account exists for this phone number, a password reset code has been sent."

type UsernameAvailability struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// UserPage is a cursor page of the admin user listing.
type UserPage struct {
	Users     []*PublicUser `json:"users"`
	EndCursor *string       `json:"endCursor,omitempty"`
	HasNext   bool          `json:"hasNext"`
}
