// Package console is a line-oriented front end to the ledger. It keeps the
// same explicit view state as the web pages and refreshes the current view
// in the background after every change.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
	"presupuesto/internal/services"
	"presupuesto/internal/view"
)

const prompt = "> "

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// screen is a rendered view. HasNext is kept so that "next" knows whether
// the ledger has another page.
type screen struct {
	State   view.State
	Body    string
	HasNext bool
}

// Console reads commands from in and writes views and messages to out.
type Console struct {
	ledger  *services.LedgerService
	reports *services.ReportService
	in      *bufio.Scanner
	now     func() time.Time
	logger  *slog.Logger

	outMu sync.Mutex
	out   io.Writer

	mu    sync.Mutex
	state view.State

	slot    view.Slot[screen]
	pending sync.WaitGroup
}

type Options struct {
	Now    func() time.Time
	Logger *slog.Logger
}

func New(ledgerSvc *services.LedgerService, reports *services.ReportService, in io.Reader, out io.Writer, opts Options) *Console {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Console{
		ledger:  ledgerSvc,
		reports: reports,
		in:      bufio.NewScanner(in),
		out:     out,
		now:     opts.Now,
		logger:  opts.Logger,
		state:   view.NewState(opts.Now()),
	}
}

// Run shows the dashboard and then executes commands until quit, end of
// input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	c.refresh(ctx)
	c.Wait()
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.print(prompt)
		if !c.in.Scan() {
			c.Wait()
			return c.in.Err()
		}
		err := c.Execute(ctx, c.in.Text())
		if errors.Is(err, ErrQuit) {
			c.Wait()
			return nil
		}
		if err != nil {
			c.printf("error: %v\n", err)
		}
		// Let the refresh land before the next prompt.
		c.Wait()
	}
}

// Wait blocks until every refresh started so far has finished.
func (c *Console) Wait() {
	c.pending.Wait()
}

// State returns the current view state.
func (c *Console) State() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Execute runs one command line. View changes trigger a refresh.
func (c *Console) Execute(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "quit", "exit", "q":
		return ErrQuit
	case "help", "?":
		c.print(helpText)
		return nil
	case "view", "v":
		if len(args) != 1 {
			return errors.New("usage: view dashboard|transactions|cards|comparison|report")
		}
		tab, err := view.ParseTab(args[0])
		if err != nil {
			return err
		}
		return c.update(ctx, func(s view.State) (view.State, error) { return s.WithTab(tab), nil })
	case "year", "y":
		if len(args) != 1 {
			return errors.New("usage: year <n>")
		}
		y, err := strconv.Atoi(args[0])
		if err != nil || y < view.FirstYear || y > c.now().Year() {
			return fmt.Errorf("year must be between %d and %d", view.FirstYear, c.now().Year())
		}
		return c.update(ctx, func(s view.State) (view.State, error) { return s.WithYear(y), nil })
	case "month", "m":
		if len(args) != 1 {
			return errors.New("usage: month <1-12>")
		}
		m, err := strconv.Atoi(args[0])
		if err != nil || m < 1 || m > 12 {
			return errors.New("month must be between 1 and 12")
		}
		return c.update(ctx, func(s view.State) (view.State, error) { return s.WithMonth(m), nil })
	case "filter", "f":
		if len(args) != 2 {
			return errors.New("usage: filter person|direction|month <value|all>")
		}
		return c.update(ctx, func(s view.State) (view.State, error) {
			return s.WithTab(view.TabTransactions).SetFilter(args[0], args[1])
		})
	case "next", "n":
		cur, _ := c.slot.Current()
		return c.update(ctx, func(s view.State) (view.State, error) {
			if s.Tab != view.TabTransactions {
				return s, errors.New("next only applies to the transactions view")
			}
			if !cur.HasNext || cur.State != s {
				return s, errors.New("already on the last page")
			}
			return s.Next(true), nil
		})
	case "prev", "p":
		return c.update(ctx, func(s view.State) (view.State, error) {
			if s.Tab != view.TabTransactions {
				return s, errors.New("prev only applies to the transactions view")
			}
			if s.Page == 0 {
				return s, errors.New("already on the first page")
			}
			return s.Prev(), nil
		})
	case "add", "a":
		return c.add(ctx, args)
	case "delete", "del", "rm":
		return c.remove(ctx, args)
	}
	return fmt.Errorf("unknown command %q, type help", cmd)
}

// update applies fn to the state and refreshes when it changed.
func (c *Console) update(ctx context.Context, fn func(view.State) (view.State, error)) error {
	c.mu.Lock()
	next, err := fn(c.state)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.mu.Unlock()
	c.refresh(ctx)
	return nil
}

func (c *Console) add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: add date=YYYY-MM-DD category=.. amount=.. [person=..] [direction=..] [method=..] [note=..]")
	}
	var in core.TransactionInput
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", a)
		}
		switch strings.ToLower(key) {
		case "date":
			in.Date = value
		case "person":
			in.Person = value
		case "category":
			in.Category = value
		case "amount":
			in.Amount = value
		case "direction":
			in.Direction = value
		case "method", "payment_method":
			in.PaymentMethod = value
		case "note":
			in.Note = value
		default:
			return fmt.Errorf("unknown field %q", key)
		}
	}

	t, err := c.ledger.Create(ctx, in)
	if err != nil {
		return err
	}
	c.printf("created #%d: %s %s %s %s\n", t.ID, t.Date, t.Category, t.Direction, core.FormatSoles(t.Amount))
	c.refresh(ctx)
	return nil
}

func (c *Console) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid id %q", args[0])
	}

	c.printf("Delete transaction #%d? [y/N] ", id)
	confirm := false
	if c.in.Scan() {
		switch strings.ToLower(strings.TrimSpace(c.in.Text())) {
		case "y", "yes", "s", "si", "sí":
			confirm = true
		}
	}

	err = c.ledger.Delete(ctx, id, confirm)
	switch {
	case errors.Is(err, services.ErrDeleteNotConfirmed):
		c.print("cancelled\n")
		return nil
	case errors.Is(err, ledger.ErrNotFound):
		return fmt.Errorf("transaction #%d not found", id)
	case err != nil:
		return err
	}
	c.printf("deleted #%d\n", id)
	c.refresh(ctx)
	return nil
}

// refresh fetches and renders the current view in the background. Only the
// newest refresh is shown; older ones that finish late are dropped.
func (c *Console) refresh(ctx context.Context) {
	st := c.State()
	gen := c.slot.Begin()
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		sc := c.fetch(ctx, st)
		if !c.slot.Apply(gen, sc) {
			c.logger.Debug("Dropping stale view", "view", st.Tab, "generation", gen)
			return
		}
		c.print(sc.Body)
	}()
}

func (c *Console) fetch(ctx context.Context, st view.State) screen {
	var b strings.Builder
	sc := screen{State: st}
	switch st.Tab {
	case view.TabTransactions:
		p := c.reports.Ledger(ctx, st.Year, st.Filter, st.Page)
		sc.HasNext = p.HasNext
		renderLedger(&b, st, p)
	case view.TabCards:
		renderCards(&b, st.Year, c.reports.Cards(ctx, st.Year))
	case view.TabComparison:
		renderComparison(&b, st.Year, c.reports.Comparison(ctx, st.Year))
	case view.TabReport:
		renderAnnual(&b, c.reports.Annual(ctx, st.Year))
	default:
		renderDashboard(&b, c.reports.Dashboard(ctx, st.Year, st.Month))
	}
	sc.Body = b.String()
	return sc
}

func (c *Console) print(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	_, _ = io.WriteString(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	c.print(fmt.Sprintf(format, args...))
}

// splitArgs splits a line on spaces. Double quotes group words, so
// note="dinner out" is one argument.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case (r == ' ' || r == '\t') && !quoted:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}

const helpText = `Commands:
  view <dashboard|transactions|cards|comparison|report>
  year <n>                       select the year
  month <1-12>                   dashboard reporting month
  filter <person|direction|month> <value|all>
  next, prev                     ledger pages
  add date=.. category=.. amount=.. [person=..] [direction=..] [method=..] [note=".."]
  delete <id>                    asks for confirmation
  help
  quit
`
