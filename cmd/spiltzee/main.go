// Command spiltzee is the interactive client: sign in, track personal
// expenses, form groups, split shared bills, view balances, and settle up
// over UPI. All data lives in the hosted backend; every subcommand is one
// user action resolving to output or an error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/Shritej1000/Spiltzee/internal/auth"
	"github.com/Shritej1000/Spiltzee/internal/cache"
	"github.com/Shritej1000/Spiltzee/internal/calculator"
	"github.com/Shritej1000/Spiltzee/internal/config"
	"github.com/Shritej1000/Spiltzee/internal/models"
	"github.com/Shritej1000/Spiltzee/internal/money"
	"github.com/Shritej1000/Spiltzee/internal/notify"
	"github.com/Shritej1000/Spiltzee/internal/postgrest"
	"github.com/Shritej1000/Spiltzee/internal/service"
	"github.com/Shritej1000/Spiltzee/internal/storage"
	"github.com/Shritej1000/Spiltzee/internal/storage/rest"
	"github.com/Shritej1000/Spiltzee/pkg/logging"
)

const usage = `Usage: spiltzee <command> [flags]

Account:
  signup          Create an account (-email -password -name [-upi])
  signin          Sign in (-email -password)
  signout         Sign out and drop the local session
  reset-password  Send a password recovery email (-email)
  whoami          Show the signed-in identity

Personal expenses:
  expense add     Add an expense (-amount -category [-desc] [-date YYYY-MM-DD])
  expense list    List expenses ([-month YYYY-MM] [-category] [-limit])
  expense delete  Delete an expense (-id)
  summary         Month overview ([-month YYYY-MM])
  series          Monthly totals ([-months N])
  insights        Spending insights ([-month YYYY-MM])

Groups:
  group create    Create a group (-name [-members id,id])
  group list      List your groups
  group members   List a group's members (-group)
  group invite    Add members (-group -members id,id)
  group expenses  List a group's shared expenses (-group)
  split add       Add a shared expense (-group -amount -split <type> ...)
  balances        Show a group's balances (-group)
  settle link     Build a UPI payment link for what you owe (-group [-note])
  settle record   Record a completed settlement (-group -to -amount [-note])
`

// app bundles everything a subcommand needs.
type app struct {
	cfg      *config.Config
	sessions *auth.Manager
	store    storage.Store
	expenses *service.ExpenseService
	groups   *service.GroupService
}

func main() {
	// Load .env for local development; absence is fine.
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	authClient := auth.NewClient(cfg.BackendURL, cfg.AnonKey, cfg.HTTPTimeout)
	sessions := auth.NewManager(authClient, cfg.SessionFile)
	store := rest.New(postgrest.New(cfg.BackendURL, cfg.AnonKey, sessions, cfg.HTTPTimeout))

	var notifier service.Notifier
	if cfg.NotifyEndpoint != "" {
		notifier = notify.New(cfg.NotifyEndpoint, cfg.HTTPTimeout)
	}

	a := &app{
		cfg:      cfg,
		sessions: sessions,
		store:    store,
		expenses: service.NewExpenseService(store, notifier),
		groups:   service.NewGroupService(store, notifier, cache.New[[]calculator.MemberBalance](cfg.CacheSize, cfg.CacheTTL)),
	}

	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		return a.cmdSignUp(ctx, rest)
	case "signin":
		return a.cmdSignIn(ctx, rest)
	case "signout":
		return a.cmdSignOut(ctx)
	case "reset-password":
		return a.cmdResetPassword(ctx, rest)
	case "whoami":
		return a.cmdWhoAmI(ctx)
	case "expense":
		return a.runExpense(ctx, rest)
	case "summary":
		return a.cmdSummary(ctx, rest)
	case "series":
		return a.cmdSeries(ctx, rest)
	case "insights":
		return a.cmdInsights(ctx, rest)
	case "group":
		return a.runGroup(ctx, rest)
	case "split":
		return a.runSplit(ctx, rest)
	case "balances":
		return a.cmdBalances(ctx, rest)
	case "settle":
		return a.runSettle(ctx, rest)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	}
	return fmt.Errorf("unknown command %q (run 'spiltzee help')", cmd)
}

// identity resolves the signed-in user, restoring the persisted session.
func (a *app) identity(ctx context.Context) (auth.Identity, error) {
	state, err := a.sessions.Load(ctx)
	if err != nil {
		return auth.Identity{}, err
	}
	if state != auth.StateReady {
		return auth.Identity{}, fmt.Errorf("not signed in (run 'spiltzee signin')")
	}
	return a.sessions.Identity()
}

func (a *app) cmdSignUp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	name := fs.String("name", "", "display name")
	upiAddr := fs.String("upi", "", "UPI address for receiving settlements")
	fs.Parse(args)
	if *email == "" || *password == "" || *name == "" {
		return fmt.Errorf("signup requires -email, -password and -name")
	}

	identity, err := a.sessions.SignUp(ctx, *email, *password, *name)
	if err != nil {
		return err
	}
	// The profile row backs group member listings and settlement links.
	err = a.store.UpsertProfile(ctx, &models.User{
		ID:         identity.ID,
		Email:      identity.Email,
		Name:       *name,
		UPIAddress: *upiAddr,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Signed up as %s (%s)\n", *name, identity.Email)
	return nil
}

func (a *app) cmdSignIn(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signin", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)
	if *email == "" || *password == "" {
		return fmt.Errorf("signin requires -email and -password")
	}

	identity, err := a.sessions.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", identity.Email)
	return nil
}

func (a *app) cmdSignOut(ctx context.Context) error {
	if _, err := a.sessions.Load(ctx); err != nil {
		return err
	}
	if err := a.sessions.SignOut(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func (a *app) cmdResetPassword(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	fs.Parse(args)
	if *email == "" {
		return fmt.Errorf("reset-password requires -email")
	}
	if err := a.sessions.ResetPassword(ctx, *email); err != nil {
		return err
	}
	fmt.Println("Recovery email sent if the account exists")
	return nil
}

func (a *app) cmdWhoAmI(ctx context.Context) error {
	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", identity.Email, identity.ID)
	return nil
}

func (a *app) runExpense(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expense requires a subcommand: add, list, delete")
	}
	switch args[0] {
	case "add":
		return a.cmdExpenseAdd(ctx, args[1:])
	case "list":
		return a.cmdExpenseList(ctx, args[1:])
	case "delete":
		return a.cmdExpenseDelete(ctx, args[1:])
	}
	return fmt.Errorf("unknown expense subcommand %q", args[0])
}

func (a *app) cmdExpenseAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("expense add", flag.ExitOnError)
	amount := fs.String("amount", "", "amount spent")
	category := fs.String("category", "", "spending category")
	desc := fs.String("desc", "", "description")
	date := fs.String("date", "", "spend date (YYYY-MM-DD, default today)")
	fs.Parse(args)

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	parsed, err := money.Parse(*amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", *amount, err)
	}
	spentAt := time.Now().UTC()
	if *date != "" {
		if spentAt, err = time.Parse("2006-01-02", *date); err != nil {
			return fmt.Errorf("date %q: want YYYY-MM-DD", *date)
		}
	}

	expense := &models.Expense{
		UserID:      identity.ID,
		Category:    *category,
		Description: *desc,
		Amount:      parsed,
		SpentAt:     spentAt,
	}
	if err := a.expenses.AddExpense(ctx, expense, identity.Email); err != nil {
		return err
	}
	fmt.Printf("Added %s to %s (%s)\n", money.Format(parsed), *category, expense.ID)
	return nil
}

func (a *app) cmdExpenseList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("expense list", flag.ExitOnError)
	month := fs.String("month", "", "restrict to a month (YYYY-MM)")
	category := fs.String("category", "", "restrict to a category")
	limit := fs.Int("limit", 50, "maximum rows")
	fs.Parse(args)

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	filter := storage.ExpenseFilter{Category: *category, Limit: *limit}
	if *month != "" {
		year, m, err := parseMonth(*month)
		if err != nil {
			return err
		}
		filter.From = time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		filter.To = filter.From.AddDate(0, 1, 0)
	}

	expenses, err := a.expenses.ListExpenses(ctx, identity.ID, filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCATEGORY\tAMOUNT\tDESCRIPTION\tID")
	for _, e := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.SpentAt.Format("2006-01-02"), e.Category, money.Format(e.Amount), e.Description, e.ID)
	}
	return w.Flush()
}

func (a *app) cmdExpenseDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("expense delete", flag.ExitOnError)
	id := fs.String("id", "", "expense ID")
	fs.Parse(args)
	if *id == "" {
		return fmt.Errorf("expense delete requires -id")
	}

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	if err := a.expenses.DeleteExpense(ctx, identity.ID, *id); err != nil {
		return err
	}
	fmt.Println("Deleted", *id)
	return nil
}

func (a *app) cmdSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	month := fs.String("month", "", "month to summarize (YYYY-MM, default current)")
	fs.Parse(args)

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	year, m, err := monthOrNow(*month)
	if err != nil {
		return err
	}

	overview, err := a.expenses.MonthOverview(ctx, identity.ID, year, m)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d: %s across %d expenses\n", m, year, money.Format(overview.Total), overview.Count)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, c := range overview.ByCategory {
		fmt.Fprintf(w, "  %s\t%s\t%s%%\n", c.Category, money.Format(c.Total), c.Share)
	}
	return w.Flush()
}

func (a *app) cmdSeries(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("series", flag.ExitOnError)
	months := fs.Int("months", 6, "number of months to show")
	fs.Parse(args)

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	series, err := a.expenses.MonthlySeries(ctx, identity.ID, time.Now(), *months)
	if err != nil {
		return err
	}
	for _, point := range series {
		fmt.Printf("%d-%02d  %s\n", point.Year, int(point.Month), money.Format(point.Total))
	}
	return nil
}

func (a *app) cmdInsights(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("insights", flag.ExitOnError)
	month := fs.String("month", "", "month to analyze (YYYY-MM, default current)")
	fs.Parse(args)

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	year, m, err := monthOrNow(*month)
	if err != nil {
		return err
	}

	found, err := a.expenses.Insights(ctx, identity.ID, year, m)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Println("Nothing noteworthy this month.")
		return nil
	}
	for _, insight := range found {
		fmt.Println("-", insight.Message)
	}
	return nil
}

func (a *app) runGroup(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("group requires a subcommand: create, list, members, invite, expenses")
	}
	switch args[0] {
	case "create":
		return a.cmdGroupCreate(ctx, args[1:])
	case "list":
		return a.cmdGroupList(ctx)
	case "members":
		return a.cmdGroupMembers(ctx, args[1:])
	case "invite":
		return a.cmdGroupInvite(ctx, args[1:])
	case "expenses":
		return a.cmdGroupExpenses(ctx, args[1:])
	}
	return fmt.Errorf("unknown group subcommand %q", args[0])
}

func (a *app) cmdGroupCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("group create", flag.ExitOnError)
	name := fs.String("name", "", "group name")
	members := fs.String("members", "", "comma-separated member user IDs")
	fs.Parse(args)
	if *name == "" {
		return fmt.Errorf("group create requires -name")
	}

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	creator, err := a.store.GetProfile(ctx, identity.ID)
	if err != nil {
		return err
	}

	group, err := a.groups.CreateGroup(ctx, *name, *creator, splitList(*members))
	if err != nil {
		return err
	}
	fmt.Printf("Created group %q (%s)\n", group.Name, group.ID)
	return nil
}

func (a *app) cmdGroupList(ctx context.Context) error {
	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	groups, err := a.groups.Groups(ctx, identity.ID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\n", g.Name, g.ID)
	}
	return w.Flush()
}

func (a *app) cmdGroupMembers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("group members", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	fs.Parse(args)
	if *group == "" {
		return fmt.Errorf("group members requires -group")
	}
	if _, err := a.identity(ctx); err != nil {
		return err
	}

	members, err := a.groups.Members(ctx, *group)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tUSER ID")
	for _, m := range members {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, m.Email, m.UserID)
	}
	return w.Flush()
}

func (a *app) cmdGroupInvite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("group invite", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	members := fs.String("members", "", "comma-separated member user IDs")
	fs.Parse(args)
	if *group == "" || *members == "" {
		return fmt.Errorf("group invite requires -group and -members")
	}
	if _, err := a.identity(ctx); err != nil {
		return err
	}

	if err := a.groups.AddMembers(ctx, *group, splitList(*members)); err != nil {
		return err
	}
	fmt.Println("Members added")
	return nil
}

func (a *app) cmdGroupExpenses(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("group expenses", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	fs.Parse(args)
	if *group == "" {
		return fmt.Errorf("group expenses requires -group")
	}
	if _, err := a.identity(ctx); err != nil {
		return err
	}

	expenses, err := a.groups.Expenses(ctx, *group)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tAMOUNT\tPAID BY\tSPLIT\tDESCRIPTION\tID")
	for _, e := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02"), money.Format(e.Amount), e.PaidBy, e.SplitType, e.Description, e.ID)
	}
	return w.Flush()
}

func (a *app) runSplit(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "add" {
		return fmt.Errorf("split requires the add subcommand")
	}
	return a.cmdSplitAdd(ctx, args[1:])
}

func (a *app) cmdSplitAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("split add", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	amount := fs.String("amount", "", "expense total")
	desc := fs.String("desc", "", "description")
	splitType := fs.String("split", "equal", "split type: equal, unequal, percentage, shares")
	members := fs.String("members", "", "equal: comma-separated member user IDs")
	amounts := fs.String("amounts", "", "unequal: id=amount,id=amount")
	percents := fs.String("percents", "", "percentage: id=percent,id=percent")
	shares := fs.String("shares", "", "shares: id=count,id=count")
	fs.Parse(args)
	if *group == "" || *amount == "" {
		return fmt.Errorf("split add requires -group and -amount")
	}

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	total, err := money.Parse(*amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", *amount, err)
	}

	in := service.AddGroupExpenseInput{
		GroupID:     *group,
		PaidBy:      identity.ID,
		Description: *desc,
		Amount:      total,
		SplitType:   models.SplitType(*splitType),
	}
	switch in.SplitType {
	case models.SplitEqual:
		in.Members = splitList(*members)
	case models.SplitUnequal:
		if in.Amounts, err = parseDecimalPairs(*amounts); err != nil {
			return err
		}
	case models.SplitPercentage:
		if in.Percents, err = parseDecimalPairs(*percents); err != nil {
			return err
		}
	case models.SplitShares:
		if in.Shares, err = parseIntPairs(*shares); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown split type %q", *splitType)
	}

	expense, err := a.groups.AddGroupExpense(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s to the group (%s)\n", money.Format(total), expense.ID)
	return nil
}

func (a *app) cmdBalances(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("balances", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	fs.Parse(args)
	if *group == "" {
		return fmt.Errorf("balances requires -group")
	}
	if _, err := a.identity(ctx); err != nil {
		return err
	}

	balances, err := a.groups.Balances(ctx, *group)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tNET\tSTATUS")
	for _, b := range balances {
		status := "settled"
		if !b.Settled() {
			if b.Net.IsPositive() {
				status = "is owed " + money.Format(b.Net)
			} else {
				status = "owes " + money.Format(b.Net.Neg())
			}
		}
		name := b.Name
		if name == "" {
			name = b.UserID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, money.Format(b.Net), status)
	}
	return w.Flush()
}

func (a *app) runSettle(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("settle requires a subcommand: link, record")
	}
	switch args[0] {
	case "link":
		return a.cmdSettleLink(ctx, args[1:])
	case "record":
		return a.cmdSettleRecord(ctx, args[1:])
	}
	return fmt.Errorf("unknown settle subcommand %q", args[0])
}

func (a *app) cmdSettleLink(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("settle link", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	note := fs.String("note", "", "payment reference note")
	fs.Parse(args)
	if *group == "" {
		return fmt.Errorf("settle link requires -group")
	}

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	plan, err := a.groups.SettleUp(ctx, *group, identity.ID, *note)
	if err != nil {
		return err
	}
	fmt.Printf("Pay %s to %s:\n%s\n", money.Format(plan.Amount), plan.ToName, plan.Link)
	fmt.Println("After paying, record it with:")
	fmt.Printf("  spiltzee settle record -group %s -to %s -amount %s\n",
		*group, plan.ToUserID, money.Format(plan.Amount))
	return nil
}

func (a *app) cmdSettleRecord(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("settle record", flag.ExitOnError)
	group := fs.String("group", "", "group ID")
	to := fs.String("to", "", "creditor user ID")
	amount := fs.String("amount", "", "amount paid")
	note := fs.String("note", "", "reference note")
	fs.Parse(args)
	if *group == "" || *to == "" || *amount == "" {
		return fmt.Errorf("settle record requires -group, -to and -amount")
	}

	identity, err := a.identity(ctx)
	if err != nil {
		return err
	}
	paid, err := money.Parse(*amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", *amount, err)
	}

	payerName := identity.Email
	if profile, err := a.store.GetProfile(ctx, identity.ID); err == nil {
		payerName = profile.Name
	} else {
		slog.Debug("Falling back to email as payer name", "error", err)
	}

	settlement := &models.Settlement{
		GroupID:    *group,
		FromUserID: identity.ID,
		ToUserID:   *to,
		Amount:     paid,
		Note:       *note,
	}
	if err := a.groups.RecordSettlement(ctx, settlement, payerName); err != nil {
		return err
	}
	fmt.Printf("Recorded %s paid to %s\n", money.Format(paid), *to)
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDecimalPairs parses "id=12.50,id=37.50" into a map.
func parseDecimalPairs(s string) (map[string]decimal.Decimal, error) {
	if s == "" {
		return nil, fmt.Errorf("missing id=amount pairs")
	}
	out := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(s, ",") {
		id, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("malformed pair %q, want id=amount", pair)
		}
		parsed, err := money.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("pair %q: %w", pair, err)
		}
		out[id] = parsed
	}
	return out, nil
}

// parseIntPairs parses "id=2,id=1" into a map.
func parseIntPairs(s string) (map[string]int64, error) {
	if s == "" {
		return nil, fmt.Errorf("missing id=count pairs")
	}
	out := make(map[string]int64)
	for _, pair := range strings.Split(s, ",") {
		id, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("malformed pair %q, want id=count", pair)
		}
		count, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("pair %q: %w", pair, err)
		}
		out[id] = count
	}
	return out, nil
}

func parseMonth(s string) (int, time.Month, error) {
	parsed, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month %q: want YYYY-MM", s)
	}
	return parsed.Year(), parsed.Month(), nil
}

func monthOrNow(s string) (int, time.Month, error) {
	if s == "" {
		now := time.Now().UTC()
		return now.Year(), now.Month(), nil
	}
	return parseMonth(s)
}
