package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/mmynk/tabkeeper/internal/calculator"
	"github.com/mmynk/tabkeeper/internal/directory"
	"github.com/mmynk/tabkeeper/internal/models"
	"github.com/mmynk/tabkeeper/internal/service"
)

// usageError is a malformed command line. It exits with status 2.
type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "tab":
		return a.tabCommand(ctx, rest)
	case "customers":
		return a.customersCommand(ctx, rest)
	case "products":
		return a.productsCommand(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		if err := a.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "Logged out")
		return nil
	case "whoami":
		return a.whoami(ctx)
	case "profile":
		return a.profile(ctx, rest)
	case "register":
		return a.register(ctx, rest)
	case "reset-password":
		return a.resetPassword(ctx, rest)
	case "grant-admin":
		return a.grantAdmin(ctx, rest)
	case "feedback":
		return a.sendFeedback(ctx, rest)
	case "settings":
		return a.settingsCommand(ctx, rest)
	}
	return usagef("unknown command %q", cmd)
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError{msg: err.Error()}
	}
	return nil
}

// subcommand splits "list -x" into ("list", ["-x"]), defaulting to def.
func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || (len(args[0]) > 0 && args[0][0] == '-') {
		return def, args
	}
	return args[0], args[1:]
}

// Tabs

func (a *app) tabCommand(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "show")

	fs := a.flags("tab " + sub)
	customerID := fs.String("customer", "", "Customer ID")
	productID := fs.String("product", "", "Product ID (tab add)")
	barcode := fs.String("barcode", "", "Scanned barcode (tab add)")
	index := fs.Int("index", -1, "Line item index (tab remove, tab status)")
	status := fs.String("status", "", "New status (tab status)")
	if err := parse(fs, rest); err != nil {
		return err
	}
	if *customerID == "" {
		return usagef("tab %s: -customer is required", sub)
	}

	session, err := a.openTab(ctx, *customerID)
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		a.printTab(session)
		return nil
	case "add":
		products, err := a.catalog.ListProducts(ctx)
		if err != nil {
			return err
		}
		switch {
		case *barcode != "":
			_, err = session.AddScanned(products, *barcode)
		case *productID != "":
			_, err = session.AddProduct(products, *productID)
		default:
			return usagef("tab add: -product or -barcode is required")
		}
		if err != nil {
			return err
		}
	case "remove":
		if err := session.RemoveItem(*index); err != nil {
			return err
		}
	case "status":
		st, err := models.ParseStatus(*status)
		if err != nil {
			return usagef("tab status: %v", err)
		}
		if err := session.SetStatus(*index, st); err != nil {
			return err
		}
	default:
		return usagef("unknown tab command %q", sub)
	}

	if result := session.Save(ctx); result.State != service.SaveSaved {
		return result.Err
	}
	a.printTab(session)
	fmt.Fprintln(a.stdout, "Tab saved")
	return nil
}

// openTab selects the customer and loads their tab. A failed fetch is an
// error here: saving the empty fallback tab would overwrite the stored one.
func (a *app) openTab(ctx context.Context, customerID string) (*service.Session, error) {
	customers, err := a.catalog.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	session := service.NewSession(a.tabs)
	result, err := session.SelectCustomer(ctx, customers, customerID)
	if err != nil {
		return nil, err
	}
	if result.Status == service.FetchFailed {
		return nil, result.Err
	}
	return session, nil
}

func (a *app) printTab(session *service.Session) {
	fmt.Fprintln(a.stdout, session.Heading())

	items := session.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.stdout, "No items")
	} else {
		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tITEM\tPRICE\tSTATUS")
		for i, item := range items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, item.Name, calculator.Format(item.Price), item.Status)
		}
		tw.Flush()
	}

	b := calculator.CalculateBreakdown(items)
	fmt.Fprintf(a.stdout, "Total: %s (paid %s, credit %s, pending %s)\n",
		calculator.Format(b.Total), calculator.Format(b.Paid), calculator.Format(b.Credit), calculator.Format(b.Pending))
}

// Catalog

func (a *app) customersCommand(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		customers, err := a.catalog.ListCustomers(ctx)
		if err != nil {
			return err
		}
		printOptions(a.stdout, directory.CustomerOptions(customers))
		return nil
	case "add":
		fs := a.flags("customers add")
		name := fs.String("name", "", "Customer name")
		email := fs.String("email", "", "Customer email")
		phone := fs.String("phone", "", "Customer phone number")
		if err := parse(fs, rest); err != nil {
			return err
		}
		customer, err := a.catalog.AddCustomer(ctx, *name, *email, *phone)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Added customer %s (%s)\n", customer.Label(), customer.ID)
		return nil
	}
	return usagef("unknown customers command %q", sub)
}

func (a *app) productsCommand(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := a.flags("products list")
		featured := fs.Int("featured", -1, "Only show the first n products (0 for the home screen count)")
		if err := parse(fs, rest); err != nil {
			return err
		}
		var (
			products []models.Product
			err      error
		)
		if *featured >= 0 {
			products, err = a.catalog.Featured(ctx, *featured)
		} else {
			products, err = a.catalog.ListProducts(ctx)
		}
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tBARCODE")
		for _, p := range products {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, calculator.Format(p.Price), p.Barcode)
		}
		return tw.Flush()
	case "add":
		fs := a.flags("products add")
		name := fs.String("name", "", "Product name")
		price := fs.Float64("price", 0, "Unit price")
		description := fs.String("description", "", "Product description")
		image := fs.String("image", "", "Picture file, sent base64 encoded")
		barcode := fs.String("barcode", "", "Barcode printed on the product")
		if err := parse(fs, rest); err != nil {
			return err
		}
		req := models.NewProduct{Name: *name, Description: *description, Price: *price, Barcode: *barcode}
		if *image != "" {
			data, err := os.ReadFile(*image)
			if err != nil {
				return fmt.Errorf("failed to read product image: %w", err)
			}
			req.Image = base64.StdEncoding.EncodeToString(data)
		}
		if err := a.catalog.AddProduct(ctx, req); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Added product %s\n", *name)
		return nil
	}
	return usagef("unknown products command %q", sub)
}

func printOptions(w io.Writer, options []directory.Option) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, o := range options {
		fmt.Fprintf(tw, "%s\t%s\n", o.Value, o.Label)
	}
	tw.Flush()
}

// Account

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password")
	if err := parse(fs, args); err != nil {
		return err
	}
	user, err := a.auth.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in as %s\n", user.Username)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	printUser(a.stdout, user)
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := a.flags("profile")
	id := fs.String("id", "", "User ID (default: signed-in user)")
	if err := parse(fs, args); err != nil {
		return err
	}
	user, err := a.auth.Profile(ctx, *id)
	if err != nil {
		return err
	}
	printUser(a.stdout, user)
	return nil
}

func printUser(w io.Writer, user *models.User) {
	fmt.Fprintf(w, "Username: %s\n", user.Username)
	if user.Email != "" {
		fmt.Fprintf(w, "Email: %s\n", user.Email)
	}
	fmt.Fprintf(w, "Admin: %s\n", strconv.FormatBool(user.IsAdmin))
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	var reg models.Registration
	fs.StringVar(&reg.Username, "username", "", "Username")
	fs.StringVar(&reg.Password, "password", "", "Password")
	fs.StringVar(&reg.Email, "email", "", "Email address")
	fs.StringVar(&reg.MobileNumber, "mobile", "", "Mobile number")
	if err := parse(fs, args); err != nil {
		return err
	}
	msg, err := a.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Registered"
	}
	fmt.Fprintln(a.stdout, msg)
	return nil
}

func (a *app) resetPassword(ctx context.Context, args []string) error {
	fs := a.flags("reset-password")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "New password")
	confirm := fs.String("confirm", "", "New password again")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := a.auth.ResetPassword(ctx, *email, *password, *confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Password updated")
	return nil
}

func (a *app) grantAdmin(ctx context.Context, args []string) error {
	fs := a.flags("grant-admin")
	username := fs.String("username", "", "User to promote")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := a.auth.GrantAdmin(ctx, *username); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s is now an admin\n", *username)
	return nil
}

func (a *app) sendFeedback(ctx context.Context, args []string) error {
	fs := a.flags("feedback")
	first := fs.String("first", "", "First name")
	last := fs.String("last", "", "Last name")
	text := fs.String("text", "", "Feedback")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := a.feedback.Submit(ctx, *first, *last, *text); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Thanks for your feedback")
	return nil
}

// Settings

func (a *app) settingsCommand(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "show")
	var (
		prefs models.Preferences
		err   error
	)
	switch sub {
	case "show":
		prefs = a.settings.Current()
	case "theme":
		if len(rest) != 1 {
			return usagef("settings theme: expected toggle, light or dark")
		}
		switch rest[0] {
		case "toggle":
			prefs, err = a.settings.ToggleTheme(ctx)
		case string(models.ThemeLight), string(models.ThemeDark):
			prefs, err = a.settings.Update(ctx, func(p *models.Preferences) {
				p.Theme = models.Theme(rest[0])
			})
		default:
			return usagef("settings theme: unknown theme %q", rest[0])
		}
	case "font":
		if len(rest) != 1 {
			return usagef("settings font: expected a size")
		}
		size, convErr := strconv.Atoi(rest[0])
		if convErr != nil {
			return usagef("settings font: %q is not a number", rest[0])
		}
		prefs, err = a.settings.SetFontSize(ctx, size)
	default:
		return usagef("unknown settings command %q", sub)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Theme: %s\nFont size: %d\n", prefs.Theme, prefs.FontSize)
	return nil
}
