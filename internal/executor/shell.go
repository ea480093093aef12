package executor

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-shellwords"

	"github.com/kashev/singularity-pipeline/internal/cache"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/plog"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// ShellExecutor runs commands with `sh -c` in their own process group.
type ShellExecutor struct {
	shell     string
	live      io.Writer
	stdin     io.Reader
	maxOutput int
	lookups   *cache.InMemoryCache
}

type ShellOption func(*ShellExecutor)

// WithShell replaces sh.
func WithShell(shell string) ShellOption {
	return func(e *ShellExecutor) {
		e.shell = shell
	}
}

// WithLiveOutput copies the combined output to w while the step runs.
func WithLiveOutput(w io.Writer) ShellOption {
	return func(e *ShellExecutor) {
		e.live = w
	}
}

// WithStdin connects r to every step. When r is a terminal the steps also
// stay in the terminal's process group so they can prompt.
func WithStdin(r io.Reader) ShellOption {
	return func(e *ShellExecutor) {
		e.stdin = r
	}
}

// WithMaxOutput limits how many trailing bytes of output are kept in the result.
func WithMaxOutput(n int) ShellOption {
	return func(e *ShellExecutor) {
		e.maxOutput = n
	}
}

// WithLookupCache caches PATH lookups in c.
func WithLookupCache(c *cache.InMemoryCache) ShellOption {
	return func(e *ShellExecutor) {
		e.lookups = c
	}
}

func NewShellExecutor(opts ...ShellOption) *ShellExecutor {
	e := &ShellExecutor{
		shell:     constants.DefaultShell,
		maxOutput: constants.MaxScanSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.lookups == nil {
		e.lookups = cache.GetCache()
	}
	return e
}

func (e *ShellExecutor) Execute(ctx context.Context, c Command) types.StepResult {
	logger := plog.Logger(ctx)
	res := c.Result()

	if ctx.Err() != nil {
		return fail(res, -1, perr.AbortedByUser())
	}

	if _, err := e.lookPath(e.shell); err != nil {
		return fail(res, 127, perr.ExecutableNotFound(e.shell))
	}
	if name, ok := firstWord(c.Line); ok {
		if _, err := e.lookPath(name); err != nil {
			logger.Debug("executable not found", "step", c.Name, "executable", name)
			return fail(res, 127, perr.ExecutableNotFound(name))
		}
	}

	stepCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	//nolint:gosec // running the pipeline's commands is the point
	cmd := exec.CommandContext(stepCtx, e.shell, "-c", c.Line)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = e.stdin
	cmd.WaitDelay = constants.WaitDelay
	configureProcessGroup(cmd, isTerminal(e.stdin))

	out := newTail(e.maxOutput, e.live)
	cmd.Stdout = out
	cmd.Stderr = out

	logger.Debug("starting step", "step", c.Name, "command", c.Line)
	start := time.Now()
	err := cmd.Run()
	res.SetDuration(time.Since(start))
	res.Output = out.String()

	switch {
	case err == nil:
		res.ExitCode = 0
		res.Classification = types.ClassificationSuccess
		return res
	case ctx.Err() != nil:
		return fail(res, exitCode(err), perr.AbortedByUser())
	case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
		return fail(res, exitCode(err), perr.Timeout(c.Name, c.Timeout))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code == 126 || code == 127 {
			// the shell could not find or execute something
			return fail(res, code, perr.ExecutableNotFound(strings.TrimSpace(lastLine(res.Output))))
		}
		return fail(res, code, perr.NonZeroExit(code))
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fail(res, 127, perr.ExecutableNotFound(e.shell))
	}
	return fail(res, -1, perr.ExecutionFailed(err.Error()))
}

func (e *ShellExecutor) lookPath(name string) (string, error) {
	key := "lookpath:" + name
	if v, ok := e.lookups.Get(key); ok {
		return v.(string), nil
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", err
	}
	e.lookups.SetWithTTL(key, p, time.Minute)
	return p, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func fail(res types.StepResult, code int, err perr.ErrorModel) types.StepResult {
	res.ExitCode = code
	res.Classification = types.ClassificationFailure
	res.Reason = err.Type
	res.Error = err.Error()
	return res
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// shell words that are not looked up on PATH
var shellBuiltins = map[string]bool{
	".": true, ":": true, "[": true, "alias": true, "break": true, "case": true, "cd": true,
	"command": true, "continue": true, "echo": true, "eval": true, "exec": true, "exit": true,
	"export": true, "false": true, "for": true, "if": true, "local": true, "printf": true,
	"pwd": true, "read": true, "return": true, "set": true, "shift": true, "source": true,
	"test": true, "times": true, "trap": true, "true": true, "type": true, "ulimit": true,
	"umask": true, "unset": true, "until": true, "wait": true, "while": true, "{": true,
	"(": true, "!": true,
}

// firstWord returns the program the command line starts with, when it can
// be known without running a shell.
func firstWord(line string) (string, bool) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil || len(args) == 0 {
		return "", false
	}
	w := args[0]
	switch {
	case shellBuiltins[w]:
		return "", false
	case strings.ContainsAny(w, "=$`(){}*?~"):
		// assignments, expansions and globs are for the shell to resolve
		return "", false
	case strings.ContainsRune(w, '/'):
		// paths are not looked up on PATH and depend on the step directory
		return "", false
	}
	return w, true
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// tail keeps the last max bytes written and copies everything to live.
type tail struct {
	mu        sync.Mutex
	buf       []byte
	max       int
	live      io.Writer
	truncated bool
}

func newTail(max int, live io.Writer) *tail {
	return &tail{max: max, live: live}
}

func (t *tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.live != nil {
		// a broken terminal must not fail the step
		_, _ = t.live.Write(p)
	}
	t.buf = append(t.buf, p...)
	if t.max > 0 && len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
		t.truncated = true
	}
	return len(p), nil
}

func (t *tail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.truncated {
		return "...\n" + string(t.buf)
	}
	return string(t.buf)
}
