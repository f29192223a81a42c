// Package cli provides the interactive yamaphone console.
//
// It wires configuration, the local credential store, the session manager
// and the resource services, then runs a REPL. Every view command
// (dashboard, accounts, calls, contacts, users) is rendered through the
// route guard, so an anonymous caller gets the login prompt and a
// non-admin never sees admin views.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
