package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/model"
)

// DefaultGracePeriod is how long an interrupted scraper gets to flush its
// autosave artifact after SIGINT before it is killed. Empirically the
// scrapers need 8-10s to finish an in-flight page and write the file.
const DefaultGracePeriod = 9 * time.Second

// maxStderrBytes bounds the captured diagnostic stream attached to
// ExecutionError.
const maxStderrBytes = 8 << 10

// Runner executes one scraper backend as a child process.
//
// The scraper contract: it receives the query, session ID, result bound and
// artifact path as flags, credentials as environment variables scoped to the
// child process, emits structured NDJSON events on stdout, periodically
// autosaves accumulated records to the artifact path, and writes the final
// record set to the same path before exiting 0.
//
// Exit taxonomy: 0 means success (parse the final artifact);
// signal-terminated or cancelled means interruption (attempt recovery); any
// other code is a hard failure carrying stderr.
type Runner struct {
	Src         model.Source
	Command     string
	Args        []string
	ArtifactDir string
	GracePeriod time.Duration
	OnEvent     EventFunc
}

func (r *Runner) Source() model.Source { return r.Src }

// Run launches the scraper and blocks until completion, interruption, or
// hard failure.
func (r *Runner) Run(ctx context.Context, q model.Query, opts model.RunOptions) (Outcome, error) {
	artifact := ArtifactPath(r.ArtifactDir, r.Src, opts.SessionID)
	if err := os.MkdirAll(r.ArtifactDir, 0o755); err != nil {
		return Outcome{}, eris.Wrap(err, "source: create artifact dir")
	}

	grace := r.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	args := append([]string{}, r.Args...)
	args = append(args,
		"--query", q.Raw,
		"--session", opts.SessionID,
		"--artifact", artifact,
	)
	if opts.MaxResults > 0 {
		args = append(args, "--max-results", strconv.Itoa(opts.MaxResults))
	}

	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Env = append(os.Environ(), credentialEnv(opts.APIKeys)...)

	// Graceful-stop protocol: on ctx cancellation send SIGINT so the
	// scraper can flush its autosave; exec escalates to SIGKILL after the
	// grace period.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGINT)
	}
	cmd.WaitDelay = grace

	stderr := &tailBuffer{limit: maxStderrBytes}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Outcome{}, eris.Wrap(err, "source: stdout pipe")
	}

	if err := cmd.Start(); err != nil {
		return Outcome{}, eris.Wrapf(err, "source: start %s scraper", r.Src)
	}

	streamed := r.consumeEvents(stdout)
	waitErr := cmd.Wait()

	switch {
	case waitErr == nil:
		return r.finalOutcome(artifact, streamed)

	case ctx.Err() != nil || signalTerminated(waitErr):
		return r.recoverOutcome(artifact)

	default:
		var exitErr *exec.ExitError
		code := -1
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		return Outcome{}, &ExecutionError{
			Source:   r.Src,
			ExitCode: code,
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
}

// consumeEvents reads NDJSON events from the scraper's stdout until EOF,
// forwarding them to OnEvent and accumulating streamed records as a fallback
// for a missing final artifact. Non-JSON lines are scraper noise and are
// skipped.
func (r *Runner) consumeEvents(stdout interface{ Read([]byte) (int, error) }) []model.RawRecord {
	var streamed []model.RawRecord

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] != '{' {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			zap.L().Debug("source: unparseable event line",
				zap.String("source", string(r.Src)),
				zap.String("line", line),
			)
			continue
		}
		if ev.Kind == EventRecord && ev.Record != nil {
			streamed = append(streamed, *ev.Record)
		}
		r.emit(ev)
	}
	return streamed
}

// emit delivers an event to the handler, swallowing panics. Observability
// must never abort the run.
func (r *Runner) emit(ev Event) {
	if r.OnEvent == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			zap.L().Warn("source: event handler panicked",
				zap.String("source", string(r.Src)),
				zap.Any("panic", p),
			)
		}
	}()
	r.OnEvent(ev)
}

// finalOutcome parses the artifact after a clean exit. A scraper that exited
// 0 without writing its artifact is tolerated by falling back to the records
// streamed over the event channel.
func (r *Runner) finalOutcome(artifact string, streamed []model.RawRecord) (Outcome, error) {
	records, found, err := ReadArtifact(artifact)
	if err != nil {
		return Outcome{}, err
	}
	if !found {
		zap.L().Warn("source: scraper exited clean without final artifact, using streamed records",
			zap.String("source", string(r.Src)),
			zap.Int("streamed", len(streamed)),
		)
		return Outcome{Records: streamed}, nil
	}
	RemoveArtifact(artifact)
	return Outcome{Records: records}, nil
}

// recoverOutcome salvages whatever the interrupted scraper flushed. No
// artifact means the interruption landed before the first autosave; that is
// an empty recovery, not an error.
func (r *Runner) recoverOutcome(artifact string) (Outcome, error) {
	records, found, err := ReadArtifact(artifact)
	if err != nil {
		zap.L().Warn("source: recovery artifact unreadable",
			zap.String("source", string(r.Src)),
			zap.Error(err),
		)
		return Outcome{Recovered: true}, nil
	}
	if !found {
		zap.L().Info("source: interrupted with no autosave artifact",
			zap.String("source", string(r.Src)),
		)
		return Outcome{Recovered: true}, nil
	}
	RemoveArtifact(artifact)
	zap.L().Info("source: recovered partial results",
		zap.String("source", string(r.Src)),
		zap.Int("records", len(records)),
	)
	return Outcome{Records: records, Recovered: true}, nil
}

// signalTerminated reports whether the child died from a signal rather than
// exiting with a code, the interruption-equivalent case in the exit
// taxonomy.
func signalTerminated(waitErr error) bool {
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && status.Signaled()
}

// credentialEnv renders per-run credentials as child-scoped environment
// variables. Credentials travel with the run options, never through shared
// process state.
func credentialEnv(keys map[string]string) []string {
	env := make([]string, 0, len(keys))
	for name, value := range keys {
		if value == "" {
			continue
		}
		env = append(env, fmt.Sprintf("LEADHARVEST_%s=%s", strings.ToUpper(name), value))
	}
	return env
}
