package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/yamaphone/internal/client/client"
	"github.com/dmitrijs2005/yamaphone/internal/client/config"
	"github.com/dmitrijs2005/yamaphone/internal/client/guard"
	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	"github.com/dmitrijs2005/yamaphone/internal/client/services"
	"github.com/dmitrijs2005/yamaphone/internal/client/session"
	"github.com/dmitrijs2005/yamaphone/internal/client/store"
	"github.com/dmitrijs2005/yamaphone/internal/logging"
)

// sessionIface is the part of session.Manager the console drives.
type sessionIface interface {
	guard.State
	Resume(ctx context.Context)
	Ready() <-chan struct{}
	Login(ctx context.Context, username, password string) (*models.Identity, error)
	Register(ctx context.Context, username, password string) (*models.Identity, error)
	Logout(ctx context.Context)
}

// viewFunc renders one view; args are the words typed after the command.
type viewFunc func(ctx context.Context, args []string) error

type App struct {
	logger logging.Logger
	db     *sql.DB

	session  sessionIface
	guard    *guard.Guard
	accounts services.AccountService
	contacts services.ContactService
	calls    services.CallService
	users    services.UserService
	views    map[string]viewFunc

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and wires the console over cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	gw := client.NewGateway(cfg.BackendURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
	)
	m := session.NewManager(store.NewSQLiteStore(db), client.NewAuthAPI(gw),
		session.WithLogger(logger),
		session.WithTTL(cfg.TokenTTL),
	)
	gw.Bind(m)

	a := &App{
		logger:   logger,
		db:       db,
		session:  m,
		guard:    guard.New(m, nil),
		accounts: services.NewAccountService(gw),
		contacts: services.NewContactService(gw, cfg.PhoneRegion),
		calls:    services.NewCallService(gw),
		users:    services.NewUserService(gw),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
	a.initViews()
	return a, nil
}

func (a *App) initViews() {
	a.views = map[string]viewFunc{
		guard.RouteDashboard: a.dashboardView,
		guard.RouteAccounts:  a.accountsView,
		guard.RouteCalls:     a.callsView,
		guard.RouteContacts:  a.contactsView,
		guard.RouteUsers:     a.usersView,
	}
}

// Close releases the local database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Start restores the previous session and waits until that is settled.
func (a *App) Start(ctx context.Context) error {
	a.session.Resume(ctx)
	return a.guard.Await(ctx)
}

// Run restores the session, shows the dashboard (or the login prompt) and
// serves the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	printlnFn("yamaphone console (type 'help' for commands)")

	go a.session.Resume(ctx)
	if a.session.Phase() == session.Resuming {
		_ = a.loadingView(ctx, nil)
	}
	if err := a.guard.Await(ctx); err != nil {
		return err
	}
	_ = a.Open(ctx, guard.RouteDashboard, nil)

	runREPL(ctx, a, a.status, a.nextLine)
	return nil
}

// Open renders the view called name through the route guard.
func (a *App) Open(ctx context.Context, name string, args []string) error {
	r, ok := a.guard.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}

	view := guard.Select(a.guard, r, guard.Views[viewFunc]{
		Loading:         a.loadingView,
		Unauthenticated: a.entryView,
		Authorized:      a.views[r.Name],
		Forbidden:       a.forbiddenView,
	})
	if view == nil {
		return fmt.Errorf("view %q is not implemented", name)
	}
	return a.report(view(ctx, args))
}

func (a *App) isRoute(name string) bool {
	_, ok := a.guard.Lookup(name)
	return ok
}

func (a *App) navigation() []guard.Route {
	return a.guard.Navigation()
}

func (a *App) status() string {
	switch a.session.Phase() {
	case session.Resuming:
		return "(resuming)"
	case session.Authenticated:
		id := a.session.Identity()
		if id != nil && id.IsAdmin {
			return "(" + id.Username + " admin)"
		}
		if id != nil {
			return "(" + id.Username + ")"
		}
	}
	return "(anonymous)"
}

func (a *App) nextLine() (string, bool) {
	line, err := a.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return line, true
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
