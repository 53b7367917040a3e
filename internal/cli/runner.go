package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/idilsaglam/todolist/internal/auth"
	"github.com/idilsaglam/todolist/internal/clock"
	"github.com/idilsaglam/todolist/internal/config"
	"github.com/idilsaglam/todolist/internal/logging"
	"github.com/idilsaglam/todolist/internal/model"
	"github.com/idilsaglam/todolist/internal/snapshot"
	"github.com/idilsaglam/todolist/internal/todolist"
	"github.com/idilsaglam/todolist/internal/tui"
	"github.com/idilsaglam/todolist/internal/ui"
)

// Runner executes one subcommand. Zero fields fall back to the process
// defaults.
type Runner struct {
	Out io.Writer
	Err io.Writer
	In  io.Reader

	Client  *http.Client
	Clock   clock.Clock
	Logger  *log.Logger
	Keyring *auth.Keyring

	// RunTUI starts the interactive list. Defaults to tui.Run.
	RunTUI func(*todolist.List) error
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		r.Logger = logging.Discard()
	}
	return r.Logger
}

// Main resolves config from args and runs the subcommand that follows the
// root flags. It returns the process exit code.
func Main(args []string, stdout, stderr io.Writer, stdin io.Reader) int {
	cfg, rest, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		PrintHelp(stdout)
		return 0
	}
	if err != nil {
		ui.Fail(stderr, err.Error())
		return 2
	}
	ui.SetTheme(cfg.Theme)

	logOpts := logging.DefaultOptions()
	logOpts.Level = cfg.LogLevel
	logOpts.Format = cfg.LogFormat
	r := &Runner{
		Out:    stdout,
		Err:    stderr,
		In:     stdin,
		Logger: logging.New(stderr, logOpts),
	}
	return r.Run(cfg, rest)
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func (r *Runner) Run(cfg *config.Config, args []string) int {
	if len(args) == 0 {
		PrintHelp(r.Err)
		return 2
	}
	cmd, a := args[0], args[1:]
	ctx := context.Background()

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(r.Out)
		return 0

	case "ls":
		return r.doList(ctx, cfg, a)

	case "add":
		if len(a) == 0 {
			ui.Fail(r.Err, "usage: todo add <title...>")
			return 2
		}
		return r.doAdd(ctx, cfg, strings.Join(a, " "))

	case "done":
		id, code := r.parseID("done", a, 1)
		if code != 0 {
			return code
		}
		return r.doToggle(ctx, cfg, id)

	case "edit":
		id, code := r.parseID("edit", a, 2)
		if code != 0 {
			return code
		}
		return r.doEdit(ctx, cfg, id, strings.Join(a[1:], " "))

	case "rm":
		id, code := r.parseID("rm", a, 1)
		if code != 0 {
			return code
		}
		return r.doRemove(ctx, cfg, id)

	case "clear":
		return r.doClear(ctx, cfg, a)

	case "tui":
		return r.doTUI(ctx, cfg)

	case "export":
		return r.doExport(ctx, cfg, a)

	case "import":
		return r.doImport(ctx, cfg, a)

	case "auth":
		if len(a) == 0 {
			ui.Fail(r.Err, "usage: todo auth <login|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return r.doAuthLogin()
		case "logout":
			return r.doAuthLogout()
		case "status":
			return r.doAuthStatus()
		case "whoami":
			return r.doAuthWhoAmI()
		}
		ui.Fail(r.Err, "usage: todo auth <login|logout|status|whoami>")
		return 2
	}

	ui.Fail(r.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.Err)
	PrintHelp(r.Err)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a todo list for the terminal

Usage:
  todo [root flags] <subcommand> [args]

Subcommands:
  add <title...>           Add a task at the top of the list
  ls [--filter F] [--group]
                           List tasks (F: all, active, completed)
  done <id>                Toggle a task between active and completed
  edit <id> <title...>     Rename a task
  rm <id>                  Remove a task
  clear [--yes]            Remove every completed task (asks first)
  tui                      Interactive list
  export [--format F] [--out FILE]
                           Write the list as json, yaml or cbor
  import [--format F] FILE Replace the list with a snapshot
  auth <login|logout|status|whoami>
                           Token sent to the seed URL

Root flags:
  --config FILE  --env-file FILE  --store json|sqlite|memory  --data-file FILE
  --storage-key KEY  --seed-url URL  --seed-timeout DURATION
  --theme classic|neon|mono
  --log-level LEVEL  --log-format text|json|logfmt

Examples:
  todo add "Buy milk"
  todo ls --filter active
  todo done 1700000000123
  todo clear --yes
`)
}

// parseID reads the id in a[0] and checks that at least n args were given.
func (r *Runner) parseID(cmd string, a []string, n int) (int64, int) {
	usage := map[string]string{
		"done": "usage: todo done <id>",
		"rm":   "usage: todo rm <id>",
		"edit": "usage: todo edit <id> <title...>",
	}[cmd]
	if len(a) < n || (n == 1 && len(a) != 1) {
		ui.Fail(r.Err, usage)
		return 0, 2
	}
	id, err := strconv.ParseInt(a[0], 10, 64)
	if err != nil {
		ui.Fail(r.Err, cmd+": not an id: "+a[0])
		return 0, 2
	}
	return id, 0
}

// -------------- subcommand impls ----------------

func (r *Runner) load(ctx context.Context, cfg *config.Config) (*todolist.List, func(), bool) {
	todos, closeFn, err := r.session(ctx, cfg)
	if err != nil {
		ui.Fail(r.Err, "load: "+err.Error())
		return nil, nil, false
	}
	return todos, closeFn, true
}

func (r *Runner) notFound(err error) int {
	ui.Fail(r.Err, err.Error())
	ui.Hint(r.Err, "Hint: run `todo ls` to see valid ids")
	return 2
}

func (r *Runner) doList(ctx context.Context, cfg *config.Config, args []string) int {
	fs := pflag.NewFlagSet("ls", pflag.ContinueOnError)
	fs.SetOutput(r.Err)
	filterName := fs.String("filter", "all", "all, active or completed")
	group := fs.Bool("group", false, "group output by pending/done")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	filter, err := model.ParseFilter(*filterName)
	if err != nil {
		ui.Fail(r.Err, "ls: "+err.Error())
		return 2
	}

	todos, closeFn, ok := r.load(ctx, cfg)
	if !ok {
		return 1
	}
	defer closeFn()
	todos.SetFilter(filter)

	visible := todos.Visible()
	recs := make([]model.Record, 0, len(visible))
	for _, it := range visible {
		recs = append(recs, it.Record())
	}

	d, p := todos.Stats()
	t := ui.Current()
	lines := []string{
		ui.Header(d, p, filter),
		t.Muted.Render(ui.ProgressBar(d, d+p, 28)),
		"",
	}
	if *group {
		lines = append(lines, ui.GroupLines(recs)...)
	} else {
		lines = append(lines, ui.RecordLines(recs)...)
	}
	lines = append(lines, "", t.Muted.Render("Tip: `todo add <title>`, `todo done <id>`"))
	ui.Panel(r.Out, lines)
	return 0
}

func (r *Runner) doAdd(ctx context.Context, cfg *config.Config, title string) int {
	if strings.TrimSpace(title) == "" {
		ui.Fail(r.Err, "add: empty title")
		return 2
	}
	todos, closeFn, ok := r.load(ctx, cfg)
	if !ok {
		return 1
	}
	defer closeFn()

	it, err := todos.Add(title)
	if err != nil {
		if errors.Is(err, todolist.ErrEmptyTitle) {
			ui.Fail(r.Err, "add: empty title")
			return 2
		}
		ui.Fail(r.Err, "add: "+err.Error())
		return 1
	}
	ui.OK(r.Out, fmt.Sprintf("added #%d", it.ID()))
	return 0
}

func (r *Runner) doToggle(ctx context.Context, cfg *config.Config, id int64) int {
	todos, closeFn, ok := r.load(ctx, cfg)
	if !ok {
		return 1
	}
	defer closeFn()

	it, err := todos.Toggle(id)
	if errors.Is(err, todolist.ErrNotFound) {
		return r.notFound(err)
	}
	if err != nil {
		ui.Fail(r.Err, "done: "+err.Error())
		return 1
	}
	state := "active"
	if it.Completed() {
		state = "completed"
	}
	ui.OK(r.Out, fmt.Sprintf("toggled #%d (%s)", id, state))
	return 0
}

func (r *Runner) doEdit(ctx context.Context, cfg *config.Config, id int64, title string) int {
	todos, closeFn, ok := r.load(ctx, cfg)
	if !ok {
		return 1
	}
	defer closeFn()

	changed, err := todos.Edit(id, title)
	if errors.Is(err, todolist.ErrNotFound) {
		return r.notFound(err)
	}
	if err != nil {
		ui.Fail(r.Err, "edit: "+err.Error())
		return 1
	}
	if !changed {
		ui.Hint(r.Out, "unchanged")
		return 0
	}
	ui.OK(r.Out, "edited")
	return 0
}

func (r *Runner) doRemove(ctx context.Context, cfg *config.Config, id int64) int {
	todos, closeFn, ok := r.load(ctx, cfg)
	if !ok {
		return 1
	}
	defer closeFn()

	err := todos.Remove(id)
	if errors.Is(err, todolist.ErrNotFound) {
		return r.notFound(err)
	}
	if err != nil {
		ui.Fail(r.Err, "rm: "+err.Error())
		return 1
	}
	ui.OK(r.Out, "removed")
	return 0
}

func (r *Runner) doClear(ctx context.Context, cfg *config.Config, args []string) int {
	fs := pflag.NewFlagSet("clear", pflag.ContinueOnError)
	fs.SetOutput(r.Err)
	yes := fs.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	todos, closeFn, ok := r.load(ctx, cfg)
	if !ok {
		return 1
	}
	defer closeFn()

	confirm := r.prompt
	if *yes {
		confirm = todolist.Confirmed
	}
	n, err := todos.ClearCompleted(confirm)
	if err != nil {
		ui.Fail(r.Err, "clear: "+err.Error())
		return 1
	}
	ui.OK(r.Out, fmt.Sprintf("cleared %d completed", n))
	return 0
}

// prompt asks on Out and reads one line from In. Only y/yes confirms.
func (r *Runner) prompt(message string) bool {
	in := r.In
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprint(r.Out, message+" [y/N] ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(r.Out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (r *Runner) doTUI(ctx context.Context, cfg *config.Config) int {
	todos, closeFn, ok := r.load(ctx, cfg)
	if !ok {
		return 1
	}
	defer closeFn()

	run := r.RunTUI
	if run == nil {
		run = tui.Run
	}
	if err := run(todos); err != nil {
		ui.Fail(r.Err, "tui: "+err.Error())
		return 1
	}
	return 0
}

func (r *Runner) doExport(ctx context.Context, cfg *config.Config, args []string) int {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	fs.SetOutput(r.Err)
	formatName := fs.String("format", "", "json, yaml or cbor (default from --out extension, else json)")
	out := fs.StringP("out", "o", "", "file to write (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, code := r.pickFormat("export", *formatName, *out)
	if code != 0 {
		return code
	}

	todos, closeFn, ok := r.load(ctx, cfg)
	if !ok {
		return 1
	}
	defer closeFn()

	w := r.Out
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			ui.Fail(r.Err, "export: "+err.Error())
			return 1
		}
		defer f.Close()
		w = f
	}
	if err := snapshot.Encode(w, format, todos.Records()); err != nil {
		ui.Fail(r.Err, "export: "+err.Error())
		return 1
	}
	if *out != "" {
		ui.OK(r.Out, fmt.Sprintf("exported %d tasks to %s", todos.Len(), *out))
	}
	return 0
}

func (r *Runner) doImport(ctx context.Context, cfg *config.Config, args []string) int {
	fs := pflag.NewFlagSet("import", pflag.ContinueOnError)
	fs.SetOutput(r.Err)
	formatName := fs.String("format", "", "json, yaml or cbor (default from file extension)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		ui.Fail(r.Err, "usage: todo import [--format F] <file>")
		return 2
	}
	path := fs.Arg(0)
	format, code := r.pickFormat("import", *formatName, path)
	if code != 0 {
		return code
	}

	f, err := os.Open(path)
	if err != nil {
		ui.Fail(r.Err, "import: "+err.Error())
		return 1
	}
	defer f.Close()
	recs, err := snapshot.Decode(f, format)
	if err != nil {
		ui.Fail(r.Err, "import: "+err.Error())
		return 1
	}

	todos, closeFn, ok := r.load(ctx, cfg)
	if !ok {
		return 1
	}
	defer closeFn()
	if err := todos.Replace(recs); err != nil {
		ui.Fail(r.Err, "import: "+err.Error())
		return 1
	}
	ui.OK(r.Out, fmt.Sprintf("imported %d tasks", len(recs)))
	return 0
}

func (r *Runner) pickFormat(cmd, name, path string) (snapshot.Format, int) {
	if name == "" {
		return snapshot.FormatFromPath(path), 0
	}
	f, err := snapshot.ParseFormat(name)
	if err != nil {
		ui.Fail(r.Err, cmd+": "+err.Error())
		return "", 2
	}
	return f, 0
}

// -------------- auth ----------------

func (r *Runner) keyring() (*auth.Keyring, error) {
	if r.Keyring != nil {
		return r.Keyring, nil
	}
	return auth.Default()
}

func (r *Runner) now() time.Time {
	if r.Clock != nil {
		return r.Clock.Now()
	}
	return time.Now()
}

func (r *Runner) doAuthLogin() int {
	k, err := r.keyring()
	if err != nil {
		ui.Fail(r.Err, "login: "+err.Error())
		return 1
	}
	fmt.Fprint(r.Out, "Paste your token: ")
	in := r.In
	if in == nil {
		in = os.Stdin
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		ui.Fail(r.Err, "read token: "+err.Error())
		return 1
	}
	tok, err := k.Save(line)
	if errors.Is(err, auth.ErrEmptyToken) {
		ui.Fail(r.Err, "login: empty token")
		return 2
	}
	if err != nil {
		ui.Fail(r.Err, "login: "+err.Error())
		return 1
	}
	ui.OK(r.Out, "logged in")
	if tok.ExpiresAt != nil {
		ui.Hint(r.Out, "expires "+tok.ExpiresAt.Format(time.RFC3339))
	}
	return 0
}

func (r *Runner) doAuthLogout() int {
	k, err := r.keyring()
	if err != nil {
		ui.Fail(r.Err, "logout: "+err.Error())
		return 1
	}
	if tok, _ := k.Load(); tok != nil && tok.Source == auth.SourceEnv {
		ui.Hint(r.Out, "token comes from $"+auth.EnvToken+"; unset it to log out")
		return 0
	}
	if err := k.Delete(); err != nil {
		ui.Fail(r.Err, "logout: "+err.Error())
		return 1
	}
	ui.OK(r.Out, "logged out")
	return 0
}

func (r *Runner) doAuthStatus() int {
	k, err := r.keyring()
	if err != nil {
		ui.Fail(r.Err, "status: "+err.Error())
		return 1
	}
	tok, err := k.Load()
	if err != nil {
		ui.Fail(r.Err, "status: "+err.Error())
		return 1
	}
	if tok == nil {
		fmt.Fprintln(r.Out, "not logged in")
		ui.Hint(r.Out, "run `todo auth login` or set $"+auth.EnvToken)
		return 0
	}
	fmt.Fprintf(r.Out, "source: %s\n", tok.Source)
	switch {
	case tok.ExpiresAt == nil:
		fmt.Fprintln(r.Out, "expires: unknown")
	case tok.Expired(r.now()):
		fmt.Fprintf(r.Out, "expired: %s\n", tok.ExpiresAt.Format(time.RFC3339))
	default:
		fmt.Fprintf(r.Out, "expires: %s\n", tok.ExpiresAt.Format(time.RFC3339))
	}
	return 0
}

// doAuthWhoAmI prints the unverified claims of a JWT token.
func (r *Runner) doAuthWhoAmI() int {
	k, err := r.keyring()
	if err != nil {
		ui.Fail(r.Err, "whoami: "+err.Error())
		return 1
	}
	tok, _ := k.Load()
	if tok == nil {
		ui.Fail(r.Err, "not logged in")
		return 2
	}
	claims, ok := auth.Claims(tok.Value)
	if !ok {
		fmt.Fprintf(r.Out, "opaque token from %s, nothing to decode\n", tok.Source)
		return 0
	}
	b, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		ui.Fail(r.Err, "whoami: "+err.Error())
		return 1
	}
	fmt.Fprintln(r.Out, string(b))
	return 0
}
