package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/yamaphone/internal/client/models"
	"github.com/dmitrijs2005/yamaphone/internal/client/services"
	"github.com/dustin/go-humanize"
)

var errUsage = errors.New("usage")

func (a *App) loadingView(ctx context.Context, args []string) error {
	a.println("Restoring session, please wait...")
	return nil
}

func (a *App) entryView(ctx context.Context, args []string) error {
	a.println("You are not logged in. Use 'login' or 'register'.")
	return nil
}

func (a *App) forbiddenView(ctx context.Context, args []string) error {
	a.println("This view is only available to administrators.")
	return nil
}

// ---- dashboard ----

func (a *App) dashboardView(ctx context.Context, args []string) error {
	id := a.session.Identity()
	if id != nil {
		a.println("Welcome,", id.Username)
	}

	accounts, err := a.accounts.List(ctx)
	if err != nil {
		return err
	}
	a.printf("SIP accounts: %d\n", len(accounts))
	a.printAccounts(accounts)

	names := make([]string, 0)
	for _, r := range a.navigation() {
		names = append(names, r.Name)
	}
	a.println("Views:", strings.Join(names, ", "))
	return nil
}

// ---- sip accounts ----

func (a *App) accountsView(ctx context.Context, args []string) error {
	sub, id, err := subcommand(args)
	if err != nil {
		a.println("Usage: accounts [list | add | edit <id> | delete <id>]")
		return nil
	}

	switch sub {
	case "list":
		accounts, err := a.accounts.List(ctx)
		if err != nil {
			return err
		}
		a.printAccounts(accounts)
		return nil
	case "add":
		in, err := a.inputAccount()
		if err != nil {
			return err
		}
		if err := a.accounts.Create(ctx, in); err != nil {
			return err
		}
		a.println("SIP account created")
	case "edit":
		in, err := a.inputAccount()
		if err != nil {
			return err
		}
		if err := a.accounts.Update(ctx, id, in); err != nil {
			return err
		}
		a.println("SIP account updated")
	case "delete":
		if err := a.accounts.Delete(ctx, id); err != nil {
			return err
		}
		a.println("SIP account deleted")
	default:
		a.println("Usage: accounts [list | add | edit <id> | delete <id>]")
	}
	return nil
}

func (a *App) inputAccount() (models.SipAccountInput, error) {
	var in models.SipAccountInput
	var err error

	if in.SipURI, err = getSimpleText(a.reader, "SIP URI (sip:user@domain)", a.out); err != nil {
		return in, err
	}
	if in.SipPassword, err = getSimpleText(a.reader, "SIP password", a.out); err != nil {
		return in, err
	}
	if in.WebsocketServer, err = getSimpleText(a.reader, "WebSocket server (optional)", a.out); err != nil {
		return in, err
	}
	if in.DisplayName, err = getSimpleText(a.reader, "Display name (optional)", a.out); err != nil {
		return in, err
	}
	if in.AutoAnswer, err = a.inputBool("Auto answer? (y/N)"); err != nil {
		return in, err
	}
	return in, nil
}

func (a *App) printAccounts(accounts []models.SipAccount) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIP URI\tNAME\tAUTO ANSWER")
	for _, acc := range accounts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", acc.ID, acc.SipURI, acc.DisplayName, yesNo(acc.AutoAnswer))
	}
	_ = tw.Flush()
}

// ---- contacts ----

func (a *App) contactsView(ctx context.Context, args []string) error {
	const usage = "Usage: contacts [list | add | edit <id> | delete <id> | fav <id>]"

	sub, id, err := subcommand(args)
	if err != nil {
		a.println(usage)
		return nil
	}

	switch sub {
	case "list":
		contacts, err := a.contacts.List(ctx)
		if err != nil {
			return err
		}
		a.printContacts(contacts)
		return nil
	case "add":
		in, err := a.inputContact()
		if err != nil {
			return err
		}
		if err := a.contacts.Create(ctx, in); err != nil {
			return err
		}
		a.println("Contact created")
	case "edit":
		in, err := a.inputContact()
		if err != nil {
			return err
		}
		if err := a.contacts.Update(ctx, id, in); err != nil {
			return err
		}
		a.println("Contact updated")
	case "delete":
		if err := a.contacts.Delete(ctx, id); err != nil {
			return err
		}
		a.println("Contact deleted")
	case "fav":
		contacts, err := a.contacts.List(ctx)
		if err != nil {
			return err
		}
		for _, c := range contacts {
			if c.ID == id {
				if err := a.contacts.ToggleFavorite(ctx, c); err != nil {
					return err
				}
				a.println("Favorite toggled for", c.Name)
				return nil
			}
		}
		a.println("Contact not found")
	default:
		a.println(usage)
	}
	return nil
}

func (a *App) inputContact() (models.ContactInput, error) {
	var in models.ContactInput
	var err error

	if in.Name, err = getSimpleText(a.reader, "Name", a.out); err != nil {
		return in, err
	}
	if in.PhoneNumber, err = getSimpleText(a.reader, "Phone number or extension", a.out); err != nil {
		return in, err
	}
	if in.IsFavorite, err = a.inputBool("Favorite? (y/N)"); err != nil {
		return in, err
	}
	return in, nil
}

func (a *App) printContacts(contacts []models.Contact) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tFAVORITE")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, services.DisplayPhone(c.PhoneNumber), star(c.IsFavorite))
	}
	_ = tw.Flush()
}

// ---- call history ----

func (a *App) callsView(ctx context.Context, args []string) error {
	calls, err := a.calls.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tTYPE\tPARTY\tDURATION\tANSWERED")
	for _, c := range calls {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(c.StartTime), c.CallType, services.DisplayPhone(c.Party()), c.Duration(), yesNo(c.Answered))
	}
	_ = tw.Flush()
	return nil
}

// ---- users ----

func (a *App) usersView(ctx context.Context, args []string) error {
	const usage = "Usage: users [list | add | delete <id>]"

	sub, id, err := subcommand(args)
	if err != nil {
		a.println(usage)
		return nil
	}

	switch sub {
	case "list":
		users, err := a.users.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tADMIN\tCREATED")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, yesNo(u.IsAdmin), humanize.Time(u.CreatedAt))
		}
		_ = tw.Flush()
		return nil
	case "add":
		var in models.UserInput
		if in.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
		password, err := getPassword(a.out)
		if err != nil {
			return err
		}
		defer wipe(password)
		in.Password = string(password)
		if in.IsAdmin, err = a.inputBool("Administrator? (y/N)"); err != nil {
			return err
		}
		if err := a.users.Create(ctx, in); err != nil {
			return err
		}
		a.println("User created")
	case "delete":
		if err := a.users.Delete(ctx, id); err != nil {
			return err
		}
		a.println("User deleted")
	default:
		a.println(usage)
	}
	return nil
}

// ---- helpers ----

// subcommand splits view arguments into a verb (default "list") and, for
// verbs that take one, a numeric id.
func subcommand(args []string) (string, int64, error) {
	if len(args) == 0 {
		return "list", 0, nil
	}
	sub := args[0]
	switch sub {
	case "edit", "delete", "fav":
		if len(args) < 2 {
			return sub, 0, errUsage
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return sub, 0, errUsage
		}
		return sub, id, nil
	}
	return sub, 0, nil
}

func (a *App) inputBool(prompt string) (bool, error) {
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func star(b bool) string {
	if b {
		return "*"
	}
	return ""
}
