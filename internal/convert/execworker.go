package convert

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/avdeevs/mediavault/internal/common"
)

var commandContext = exec.CommandContext

var formatContentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"gif":  "image/gif",
}

// ExecWorker runs conversions through an external transcoder binary that
// emits JSON progress lines on stdout, one object per line:
//
//	{"percent": 42.5, "phase": "encoding"}
//
// Requests are processed one at a time; the worker itself is long-lived.
type ExecWorker struct {
	binary  string
	workDir string
}

// ExecOption configures an ExecWorker.
type ExecOption func(*ExecWorker)

// WithBinary overrides the default transcoder binary name.
func WithBinary(binary string) ExecOption {
	return func(w *ExecWorker) {
		if binary != "" {
			w.binary = binary
		}
	}
}

// NewExecWorker constructs a worker writing conversion output under workDir.
func NewExecWorker(workDir string, opts ...ExecOption) *ExecWorker {
	w := &ExecWorker{binary: "ffmpeg-shim", workDir: workDir}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *ExecWorker) Run(ctx context.Context, requests <-chan Request, messages chan<- Message) error {
	if _, err := exec.LookPath(w.binary); err != nil {
		return fmt.Errorf("%w: transcoder %q not found: %v", common.ErrWorkerInit, w.binary, err)
	}
	if err := os.MkdirAll(w.workDir, 0o770); err != nil {
		return fmt.Errorf("%w: %v", common.ErrWorkerInit, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-requests:
			if !ok {
				return nil
			}
			w.handle(ctx, req, messages)
		}
	}
}

func (w *ExecWorker) handle(ctx context.Context, req Request, messages chan<- Message) {
	send := func(msg Message) {
		select {
		case messages <- msg:
		case <-ctx.Done():
		}
	}
	fail := func(err error) {
		send(Message{Type: MessageError, ID: req.ID, Error: err.Error()})
	}

	format := strings.ToLower(strings.TrimSpace(req.Payload.TargetFormat))
	if format == "" {
		fail(fmt.Errorf("target format required"))
		return
	}

	outputPath := filepath.Join(w.workDir, req.ID+"."+format)
	defer os.Remove(outputPath)

	args := []string{"convert", "--input", req.Payload.SourcePath, "--output", outputPath, "--progress-json"}
	cmd := commandContext(ctx, w.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		fail(fmt.Errorf("stdout pipe: %w", err))
		return
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		fail(fmt.Errorf("start transcoder: %w", err))
		return
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Bytes()
		var payload struct {
			Percent float64 `json:"percent"`
			Phase   string  `json:"phase"`
		}
		if err := json.Unmarshal(line, &payload); err != nil {
			continue
		}
		send(Message{Type: MessageProgress, ID: req.ID, Progress: payload.Percent / 100, Phase: payload.Phase})
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		fail(fmt.Errorf("read transcoder output: %w", err))
		return
	}

	if err := cmd.Wait(); err != nil {
		fail(fmt.Errorf("transcode failed: %w", err))
		return
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		fail(fmt.Errorf("read transcoder result: %w", err))
		return
	}

	contentType, ok := formatContentTypes[format]
	if !ok {
		contentType = "application/octet-stream"
	}

	send(Message{Type: MessageComplete, ID: req.ID, Result: &Result{
		Data:        data,
		ContentType: contentType,
		Name:        convertedName(req.Payload.Name, format),
	}})
}

// convertedName swaps the source name's extension for the target format.
func convertedName(name, format string) string {
	base := name
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	if base == "" {
		base = "converted"
	}
	return base + "." + format
}

var _ Worker = (*ExecWorker)(nil)
