// Package accounts provides credential verification and the email
// confirmation workflow used during account registration: issuing one-time
// confirmation codes, confirming them exactly once before they expire, and
// renewing them via resend.
//
// Registration flow:
//   - RegisterUserHandler checks login/email uniqueness, hashes the
//     password, and creates the user unconfirmed with a freshly issued
//     confirmation code. The confirmation email is sent after the record is
//     committed; a delivery failure is reported to the caller but the user
//     and its code stay persisted, so a later resend can retry under a
//     fresh code.
//   - Confirmations owns the code state machine. Confirm performs a single
//     conditional update (code + unconfirmed + unexpired) so two racing
//     confirms cannot both succeed. Renew replaces the live code and
//     invalidates the previous one permanently.
//
// Login:
//   - UserProvider resolves an identity by login or email and compares the
//     password against the stored bcrypt hash. Auther mints an HS256 JWT
//     bound to the user id. The HTTP controller collapses unknown
//     identifier and wrong password into one authentication failure so the
//     login endpoint never reveals which identifiers exist.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter describing login,
//     registration, confirmation, and resend events. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue without
//     blocking authentication.
package accounts
