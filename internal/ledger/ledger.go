// Package ledger turns an export CSV into ledger journal entries by running
// the external ledger binary.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/models"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "ledger"

// DefaultZeroFile is the base name of the ledger file holding account declarations.
const DefaultZeroFile = "zero"

// Request describes one conversion.
type Request struct {
	CSVPath     string    // export CSV to convert
	AccountName string    // display name, used as Assets:<AccountName>
	Name        string    // output base name, <Name>.exported.ledger
	Now         time.Time // passed as --now; zero means time.Now()
}

// Result reports how the ledger process ended.
type Result struct {
	OutputPath string
	ExitCode   int
	Signal     string
}

// Converter runs `ledger convert`.
type Converter struct {
	binary   string
	dir      string
	zeroFile string
	logger   logging.Logger
}

// NewConverter creates a Converter writing into dir. Empty binary and zeroFile
// fall back to the defaults.
func NewConverter(binary, dir, zeroFile string, logger logging.Logger) *Converter {
	if binary == "" {
		binary = DefaultBinary
	}
	if zeroFile == "" {
		zeroFile = DefaultZeroFile
	}
	return &Converter{binary: binary, dir: dir, zeroFile: zeroFile, logger: logging.OrDefault(logger)}
}

// OutputPath returns <dir>/<name>.exported.ledger.
func (c *Converter) OutputPath(name string) string {
	return filepath.Join(c.dir, name+".exported.ledger")
}

// Args returns the ledger arguments for req.
func (c *Converter) Args(req Request) []string {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	return []string{
		"convert", req.CSVPath,
		"--invert",
		"--input-date-format=%Y-%m-%d",
		"--account=Assets:" + req.AccountName,
		"--rich-data",
		"--file=" + filepath.Join(c.dir, c.zeroFile+".ledger"),
		"--now=" + now.Format("2006-01-02"),
	}
}

// Convert appends the converted journal to the output file. A ledger process that
// exits non-zero is logged and reported in Result without an error; failing to
// open the output or start the process is an error.
func (c *Converter) Convert(ctx context.Context, req Request) (Result, error) {
	res := Result{OutputPath: c.OutputPath(req.Name)}

	if err := os.MkdirAll(c.dir, models.PermissionDirectory); err != nil {
		return res, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	out, err := os.OpenFile(res.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, models.PermissionDataFile) // #nosec G304
	if err != nil {
		return res, fmt.Errorf("failed to open ledger output: %w", err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close ledger output")
		}
	}()

	cmd := exec.CommandContext(ctx, c.binary, c.Args(req)...) // #nosec G204 -- binary comes from configuration
	var stderr bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = &stderr

	logger := c.logger.WithFields(
		logging.F(logging.FieldFile, req.CSVPath),
		logging.F(logging.FieldOutputFile, res.OutputPath),
	)

	err = cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logger.Info("Converted export to ledger")
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			res.Signal = ws.Signal().String()
		}
		logger.WithFields(
			logging.F("exit_code", res.ExitCode),
			logging.F("signal", res.Signal),
			logging.F("stderr", strings.TrimSpace(stderr.String())),
		).Warn("Ledger conversion failed")
		return res, nil
	default:
		return res, fmt.Errorf("failed to run %s: %w", c.binary, err)
	}
}
