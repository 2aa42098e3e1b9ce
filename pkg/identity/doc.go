// Package identity implements the token provider for the StepUp core.
//
// # Overview
//
// Identity comes from an external OAuth2/OIDC provider. The Provider always
// attempts silent acquisition first, using the refresh token persisted in
// the account checkpoint file. When silent acquisition is impossible it does
// NOT pop anything up: it returns an InteractionRequiredError carrying a
// login URL for a full-navigation redirect flow (popups break embedded
// hosts), checkpoints the pending login state, and the flow resumes via
// CompleteRedirect on a later process run.
//
// # Initialization Ordering
//
// Redirect-completion handling must fully resolve before the first token
// request is issued, otherwise token requests race with pending redirect
// state. Start performs that resolution and closes the readiness gate;
// GetToken and CompleteRedirect both wait on it:
//
//	store := identity.NewAccountStore(env.Identity.AccountFile)
//	provider, err := identity.NewProvider(ctx, env.Identity, store, log)
//	if err != nil {
//		// identity provider unreachable
//	}
//	provider.Start(ctx)
//
//	cred, err := provider.GetToken(ctx)
//	if errors.Is(err, identity.ErrInteractionRequired) {
//		var ire *identity.InteractionRequiredError
//		errors.As(err, &ire)
//		// navigate the user to ire.LoginURL
//	}
//
// # Claim Normalization
//
// FromClaims maps raw ID token claims to an Identity with a fixed priority
// order per field; see its documentation. Nothing else in the module reads
// claims directly.
package identity
