package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/minicrm/backend/internal/dashboard"
	"github.com/minicrm/backend/internal/domain/lead"
	"github.com/minicrm/backend/internal/infrastructure/logger"
)

type options struct {
	baseURL  string
	username string
	password string
	token    string
	timeout  time.Duration
	search   string
	status   string
	logLevel string
	args     []string
}

// parseFlags reads the command line. Secrets come from the environment only
// after parsing so that -h never prints them.
func parseFlags(args []string, output io.Writer, getenv func(string) string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.baseURL, "url", "http://localhost:5000", "API base URL")
	fs.StringVar(&opts.username, "username", "admin", "Admin username")
	fs.StringVar(&opts.password, "password", "", "Admin password (default: $CRM_DASHBOARD_PASSWORD)")
	fs.StringVar(&opts.token, "token", "", "Session token from an earlier login; skips the login (default: $CRM_DASHBOARD_TOKEN)")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Timeout of each API request")
	fs.StringVar(&opts.search, "search", "", "Only list leads whose name, email or source contains this text")
	fs.StringVar(&opts.status, "status", dashboard.FilterAll, "Only list leads with this status (all, new, contacted, converted)")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.password == "" {
		opts.password = getenv("CRM_DASHBOARD_PASSWORD")
	}
	if opts.token == "" {
		opts.token = getenv("CRM_DASHBOARD_TOKEN")
	}
	opts.args = fs.Args()
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr, os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		printUsage()
		return
	}
	if err != nil {
		os.Exit(2)
	}

	args := opts.args
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()
	client := dashboard.NewClient(opts.baseURL,
		dashboard.WithHTTPClient(&http.Client{Timeout: opts.timeout}),
		dashboard.WithToken(opts.token),
	)

	if opts.token == "" {
		session := dashboard.NewSession(client, client)
		if err := session.Login(ctx, opts.username, opts.password); err != nil {
			fmt.Fprintln(os.Stderr, "Login failed:", session.LastError())
			os.Exit(1)
		}
	}

	d := dashboard.New(client, dashboard.WithLogger(log))
	defer d.Close()

	if err := d.Load(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error fetching leads:", err)
		os.Exit(1)
	}

	if err := run(ctx, d, args, opts.search, opts.status); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, d *dashboard.Dashboard, args []string, search, status string) error {
	switch args[0] {
	case "list":
		d.SetSearch(search)
		if err := d.SetStatusFilter(status); err != nil {
			return err
		}
		printLeads(d.Visible())
		return nil

	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: dashboard add <name> <email> [source]")
		}
		form := dashboard.NewLeadForm{Name: args[1], Email: args[2]}
		if len(args) > 3 {
			form.Source = args[3]
		}
		id, err := d.Create(ctx, form)
		if err != nil {
			return err
		}
		fmt.Println("Lead added successfully:", id)
		return nil

	case "status":
		if len(args) < 3 {
			return fmt.Errorf("usage: dashboard status <id> <new|contacted|converted>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := d.SetStatus(ctx, id, lead.Status(args[2])); err != nil {
			return err
		}
		fmt.Println("Lead updated successfully")
		return nil

	case "notes":
		if len(args) < 3 {
			return fmt.Errorf("usage: dashboard notes <id> <text>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := d.EditNotes(id, args[2]); err != nil {
			return err
		}
		// a one-shot command has no later keystrokes to wait for
		if err := d.Flush(); err != nil {
			return fmt.Errorf("notes not saved: %w", err)
		}
		fmt.Println("Notes saved")
		return nil

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: dashboard delete <id>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := d.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Println("Lead deleted successfully")
		return nil

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lead id %q", s)
	}
	return id, nil
}

func printLeads(leads []lead.Lead) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSOURCE\tSTATUS\tNOTES\tCREATED")
	for _, l := range leads {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Name, l.Email, l.Source, l.Status, l.Notes, l.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func printUsage() {
	fmt.Println(`Mini CRM Dashboard

Usage:
  dashboard [flags] <command> [arguments]

Commands:
  list                         Show leads (filtered by -search and -status)
  add <name> <email> [source]  Add a lead
  status <id> <status>         Change a lead's status
  notes <id> <text>            Replace a lead's notes
  delete <id>                  Delete a lead`)
}
