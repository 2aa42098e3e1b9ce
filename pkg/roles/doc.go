// Package roles resolves which application roles an identity holds and
// which one is active for the session.
//
// Assignments live in a role list keyed by user principal name. The
// resolver matches the signed-in subject against that list (exact, then
// loose), picks the active role (default flag, then educator, then a
// deterministic sort), and synthesizes a local educator assignment when
// nothing matches so the application never renders roleless. Pinning a
// default role self-heals duplicate default flags left behind by earlier
// writes. A Broadcaster lets role administration screens trigger session
// refreshes elsewhere in the process.
package roles
