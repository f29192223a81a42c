package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/yamaphone/internal/client/guard"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	navigation() []guard.Route
	isRoute(name string) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Open(ctx context.Context, name string, args []string) error
}

// runREPL starts a simple read–eval–print loop for the yamaphone console.
//
// It reads lines with nextLine, parses the first token as the command, and
// dispatches to methods on 'a'. Route names (dashboard, accounts, calls,
// contacts, users) open the matching view; what is actually shown is up to
// the route guard behind Open. The loop exits when nextLine reports no
// more input or the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors to the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, nextLine func() (string, bool)) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("yamaphone %s> ", statusFn()))
		line, ok := nextLine()
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText(a.navigation()))

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if a.isRoute(cmd) {
				_ = a.Open(ctx, cmd, args)
				continue
			}
			printlnFn("Unknown command:", cmd)
		}
	}
}

func helpText(nav []guard.Route) string {
	if len(nav) == 0 {
		return "Available commands: register, login, whoami, exit"
	}
	names := make([]string, 0, len(nav))
	for _, r := range nav {
		names = append(names, r.Name)
	}
	return "Available commands: " + strings.Join(names, ", ") + ", whoami, logout, exit"
}
