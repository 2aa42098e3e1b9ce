package identity

import "time"

// Credential is a bearer credential for the remote list store. It is handed
// out per call and never persisted by consumers; renewal is the Provider's
// job.
type Credential struct {
	AccessToken string
	Expiry      time.Time
}

// Account is the persisted active-account selection. The refresh token is
// what makes silent acquisition possible on later runs; it lives only in the
// account checkpoint file.
type Account struct {
	Subject      string `json:"subject"`
	DisplayName  string `json:"displayName,omitempty"`
	Role         string `json:"role,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Identity is the normalized view of an authenticated principal, extracted
// from ID token claims by FromClaims.
type Identity struct {
	Subject     string
	DisplayName string

	// Role is the role claim supplied by the identity provider, if any.
	// Used only as a fallback when no role assignment row matches.
	Role string
}
