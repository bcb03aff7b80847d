// Package cli implements the onboard command-line client.
//
// Commands:
//
//	onboard signup      create an account and sign in
//	onboard login       sign in
//	onboard logout      forget the stored session
//	onboard me          show the signed-in user
//	onboard form show   print the saved form
//	onboard wizard      walk through the onboarding steps interactively
//
// The session token is kept in ~/.onboarding/session.db between runs.
// Inside the wizard, edits are typed as field=value and autosaved in the
// background; :next, :back, :goto N, :show and :quit navigate.
package cli
