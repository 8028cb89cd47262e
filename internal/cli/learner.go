package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/pk1"
	"github.com/imacdo2212/EdTech/internal/store"
)

// loadLearner loads a learner and maps store errors to exit codes.
func loadLearner(ctx context.Context, s *store.Store, learnerID string) (pk1.State, audit.Ledger, error) {
	st, l, err := s.Load(ctx, learnerID)
	switch {
	case err == nil:
		return st, l, nil
	case errors.Is(err, store.ErrNotFound):
		return st, l, WrapExitError(ExitCommandError, fmt.Sprintf("learner %s not found", learnerID), err)
	case audit.IsChainError(err):
		return st, l, WrapExitError(ExitFailure, fmt.Sprintf("ledger for %s does not verify", learnerID), err)
	default:
		return st, l, WrapExitError(ExitCommandError, "failed to load learner", err)
	}
}

func saveLearner(ctx context.Context, s *store.Store, st pk1.State, l audit.Ledger) error {
	if err := s.Save(ctx, st, l); err != nil {
		return WrapExitError(ExitCommandError, "failed to save learner", err)
	}
	return nil
}

// fail reports err through f and returns it. Non-ExitErrors become
// command errors.
func fail(f *OutputFormatter, code string, err error) error {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitCommandError, "command failed", err)
	}
	_ = f.Error(code, exitErr.Error(), nil)
	return exitErr
}

// codeFor picks the JSON error code for an ExitError from loadLearner.
func codeFor(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound
	case audit.IsChainError(err):
		return ErrCodeChainBroken
	default:
		return ErrCodeStore
	}
}

// readJSON parses a JSON document from path, or from in when path is "-".
func readJSON(path string, in io.Reader) (canon.Value, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read input", err)
	}
	v, err := canon.Parse(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid JSON input", err)
	}
	return v, nil
}

// timestampOr returns at, or the current UTC time when at is empty.
func timestampOr(at string) string {
	if at != "" {
		return at
	}
	return time.Now().UTC().Format(time.RFC3339)
}
