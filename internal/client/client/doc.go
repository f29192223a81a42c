// Package client is the console's only door to the yamaphone backend.
//
// # Overview
//
// The package provides:
//  1. Gateway, the Authenticated Request Gateway. Every backend call goes
//     through Gateway.Do, which attaches "Authorization: Bearer <token>" when
//     the bound session holds a credential, encodes the body as JSON, bounds
//     the call with a deadline and decodes 2xx responses.
//  2. AuthAPI, typed wrappers over /api/login, /api/register and /api/me.
//  3. InitDatabase, which opens the local SQLite database and applies the
//     embedded goose migrations.
//
// # Error Handling
//
// Failures are returned as *APIError carrying the HTTP status (0 when the
// backend was not reached) and a message taken from the response body. Match
// the category with errors.Is: ErrTransport, ErrInvalidCredentials,
// ErrSessionInvalid, ErrValidation, ErrForbidden, ErrNotFound,
// ErrRequestFailed.
//
// A 401 on a request that carried a credential is ErrSessionInvalid; the
// Gateway then calls Invalidate on the bound session with the rejected
// credential, so the console drops back to the login screen unless the
// session has already moved on to another credential.
//
// The Gateway does not retry, refresh credentials or queue requests.
package client
