package scripts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	ingestScript   = "ingest.py"
	queryScript    = "query.py"
	insightsScript = "insights.py"
	podcastScript  = "generate-podcast.py"

	// ingest prints its machine-readable result on a prefixed line amid
	// human-oriented progress output.
	resultPrefix = "RESULT:"
)

// Timeouts bounds each capability's subprocess run.
type Timeouts struct {
	Ingest  time.Duration
	Script  time.Duration
	Podcast time.Duration
}

// Runner implements all four capabilities by spawning the configured
// interpreter on scripts in dir.
type Runner struct {
	log      *slog.Logger
	python   string
	dir      string
	timeouts Timeouts
}

func NewRunner(log *slog.Logger, python, dir string, timeouts Timeouts) *Runner {
	return &Runner{log: log, python: python, dir: dir, timeouts: timeouts}
}

func (r *Runner) Ingest(ctx context.Context, paths []string) (IngestReport, error) {
	out, err := r.run(ctx, r.timeouts.Ingest, ingestScript, paths...)
	if err != nil {
		return IngestReport{}, err
	}
	line, ok := resultLine(out)
	if !ok {
		return IngestReport{}, errors.New("no result found in ingest output")
	}
	var report IngestReport
	if err := json.Unmarshal([]byte(line), &report); err != nil {
		return IngestReport{}, fmt.Errorf("decode ingest result: %w", err)
	}
	if !report.Success {
		if report.Message == "" {
			report.Message = "ingestion failed"
		}
		return report, errors.New(report.Message)
	}
	return report, nil
}

func (r *Runner) Query(ctx context.Context, text string) (QueryResult, error) {
	out, err := r.run(ctx, r.timeouts.Script, queryScript, text)
	if err != nil {
		return QueryResult{}, err
	}
	// The query backend prints either the result object or {"error": ...}.
	var probe struct {
		Error string `json:"error"`
	}
	trimmed := strings.TrimSpace(out)
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return QueryResult{}, fmt.Errorf("decode query result: %w", err)
	}
	if probe.Error != "" {
		return QueryResult{}, errors.New(probe.Error)
	}
	var result QueryResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return QueryResult{}, fmt.Errorf("decode query result: %w", err)
	}
	return result, nil
}

func (r *Runner) Insights(ctx context.Context, text string) (Insights, error) {
	out, err := r.run(ctx, r.timeouts.Script, insightsScript, text)
	if err != nil {
		return Insights{}, err
	}
	var envelope struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		Insights
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &envelope); err != nil {
		return Insights{}, fmt.Errorf("decode insights result: %w", err)
	}
	if !envelope.OK {
		if envelope.Error == "" {
			envelope.Error = "insights generation failed"
		}
		return Insights{}, errors.New(envelope.Error)
	}
	return envelope.Insights, nil
}

func (r *Runner) Generate(ctx context.Context, text, voice string) (Podcast, error) {
	out, err := r.run(ctx, r.timeouts.Podcast, podcastScript, text, "--gender", voice)
	if err != nil {
		return Podcast{}, err
	}
	var envelope struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		Podcast
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &envelope); err != nil {
		return Podcast{}, fmt.Errorf("decode podcast result: %w", err)
	}
	if !envelope.OK {
		if envelope.Error == "" {
			envelope.Error = "podcast generation failed"
		}
		return Podcast{}, errors.New(envelope.Error)
	}
	return envelope.Podcast, nil
}

// run spawns the interpreter on script and returns its stdout. Stderr is
// logged but never treated as failure on its own; the backends write
// progress there.
func (r *Runner) run(ctx context.Context, timeout time.Duration, script string, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmdArgs := append([]string{filepath.Join(r.dir, script)}, args...)
	cmd := exec.CommandContext(ctx, r.python, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stderr.Len() > 0 {
		r.log.Debug("script stderr", "script", script, "stderr", truncateForLog(stderr.String()))
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s timed out: %w", script, ctx.Err())
		}
		return "", fmt.Errorf("%s failed: %w", script, err)
	}
	return stdout.String(), nil
}

// resultLine extracts the JSON payload from the last RESULT: line.
func resultLine(out string) (string, bool) {
	var found string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, resultPrefix) {
			found = strings.TrimSpace(strings.TrimPrefix(line, resultPrefix))
		}
	}
	return found, found != ""
}

func truncateForLog(s string) string {
	const max = 2000
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
