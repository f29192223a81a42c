package guard

// Route is a protected console view.
type Route struct {
	Name  string
	Title string
	Admin bool
}

const (
	RouteDashboard = "dashboard"
	RouteAccounts  = "accounts"
	RouteCalls     = "calls"
	RouteContacts  = "contacts"
	RouteUsers     = "users"
)

// DefaultRoutes is the console's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteDashboard, Title: "Dashboard"},
		{Name: RouteAccounts, Title: "SIP accounts"},
		{Name: RouteCalls, Title: "Call history"},
		{Name: RouteContacts, Title: "Contacts"},
		{Name: RouteUsers, Title: "Users", Admin: true},
	}
}
