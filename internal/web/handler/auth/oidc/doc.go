// Package oidc provides handlers for OpenID Connect (OIDC) sign-in.
//
// It implements the OAuth2/OIDC authorization code flow against external
// identity providers such as Keycloak, Okta, Azure AD or Google.
//
// The flow covers:
//   - Login initiation with CSRF protection via state tokens
//   - Authorization callback handling with ID token verification
//   - Automatic portal user provisioning from OIDC claims
//   - Session creation and cookie management
//   - Logout with provider end session support
//
// Provider accounts only ever become portal users; course access still
// requires an enrolment, identity provider claims never grant it.
//
// Example usage:
//
//	// Initialize OIDC handler
//	oidc.Handler.Init(app, cfg, db)
//
//	// Users can then access:
//	// GET  /auth/oidc/login    - Initiate OIDC login flow
//	// GET  /auth/oidc/callback - Handle provider callback
//	// GET  /auth/oidc/logout   - Logout and optionally end provider session
package oidc
