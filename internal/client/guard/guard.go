// Package guard decides what a caller sees when asking for a console view.
//
// The decision depends only on the session phase and, for admin views, on
// the identity's admin flag. The admin check is a navigation aid; the
// backend is what actually refuses privileged data.
package guard

import (
	"context"

	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	"github.com/dmitrijs2005/yamaphone/internal/client/session"
)

// State is the read-only view of the session the Guard needs.
type State interface {
	Phase() session.Phase
	Identity() *models.Identity
}

type readySignaler interface {
	Ready() <-chan struct{}
}

// Decision is the outcome of resolving a route.
type Decision int

const (
	// Loading: the session is still resuming, show a placeholder.
	Loading Decision = iota
	// Unauthenticated: show the login/registration entry view.
	Unauthenticated
	// Authorized: show the requested view.
	Authorized
	// Forbidden: an admin view asked for by a non-admin.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authorized:
		return "authorized"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Views holds one view per decision. Forbidden may be left zero when
// navigation never offers admin routes to non-admins.
type Views[V any] struct {
	Loading         V
	Unauthenticated V
	Authorized      V
	Forbidden       V
}

type Guard struct {
	state  State
	routes []Route
}

// New returns a Guard over state serving routes; nil routes means DefaultRoutes.
func New(state State, routes []Route) *Guard {
	if routes == nil {
		routes = DefaultRoutes()
	}
	return &Guard{state: state, routes: routes}
}

// Resolve decides what to show for r in the current session state.
func (g *Guard) Resolve(r Route) Decision {
	switch g.state.Phase() {
	case session.Resuming:
		return Loading
	case session.Authenticated:
		if r.Admin && !isAdmin(g.state.Identity()) {
			return Forbidden
		}
		return Authorized
	default:
		return Unauthenticated
	}
}

// Select returns the view of v matching the decision for r.
func Select[V any](g *Guard, r Route, v Views[V]) V {
	switch g.Resolve(r) {
	case Loading:
		return v.Loading
	case Authorized:
		return v.Authorized
	case Forbidden:
		return v.Forbidden
	default:
		return v.Unauthenticated
	}
}

// Await blocks until the session has finished resuming, or ctx is done.
// States that cannot signal readiness are treated as ready.
func (g *Guard) Await(ctx context.Context) error {
	rs, ok := g.state.(readySignaler)
	if !ok {
		return nil
	}
	select {
	case <-rs.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Lookup finds a route by name.
func (g *Guard) Lookup(name string) (Route, bool) {
	for _, r := range g.routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Navigation lists the routes to offer: none unless Authenticated, and no
// admin routes for non-admins.
func (g *Guard) Navigation() []Route {
	if g.state.Phase() != session.Authenticated {
		return nil
	}
	admin := isAdmin(g.state.Identity())

	out := make([]Route, 0, len(g.routes))
	for _, r := range g.routes {
		if r.Admin && !admin {
			continue
		}
		out = append(out, r)
	}
	return out
}

func isAdmin(id *models.Identity) bool {
	return id != nil && id.IsAdmin
}
