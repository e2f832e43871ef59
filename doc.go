// Package auth implements the account and session-credential core for the
// store backend: user registration with bcrypt password hashing, credential
// verification at login, stateless JWT session issuance, and the email
// verification handshake.
//
// The package is transport-agnostic. It exposes three operations through
// Auther (Register, Login, ValidateEmail) plus session resolution helpers,
// and consumes its collaborators through narrow contracts: UserStore for the
// persistence directory and Mailer for the notification gateway. All
// failures are returned as categorized errors (go-errors) so the request
// layer can branch on kind without inspecting messages.
//
// Persistence is backed by Bun repositories; see Storage for the explicit
// database handle lifecycle and RepositoryManager for the composition root
// applications wire the repositories through.
package auth
