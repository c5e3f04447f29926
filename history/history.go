package history

// This file contains shared history utilities for saving and loading
// mirrored session records.

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/railbridge/railbridge/model"
	"github.com/rs/zerolog"
)

type Entry struct {
	Session  model.Session
	FullPath string
}

// Root returns the .railbridge directory path from the git repository
// root. The directory may not exist yet; Save creates it.
func Root() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository: %w", err)
	}
	repoRoot := strings.TrimSpace(string(output))
	return filepath.Join(repoRoot, ".railbridge"), nil
}

// Save writes one session record under root. History is best effort:
// callers log the returned error and move on.
func Save(root string, session model.Session) (string, error) {
	dir := filepath.Join(root, session.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}

	path := filepath.Join(dir, "session.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing session record: %w", err)
	}
	return path, nil
}

// LoadEntries loads all session records from the .railbridge directory.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, fmt.Errorf("no mirrored sessions found in %s", root)
	}

	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			sessionPath := filepath.Join(path, "session.json")
			if _, err := os.Stat(sessionPath); err == nil {
				session, err := parseSessionJSON(sessionPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", sessionPath).Msg("Failed to parse session.json")
					return nil
				}

				entries = append(entries, Entry{
					Session:  session,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk .railbridge directory: %w", err)
	}

	return entries, nil
}

// parseSessionJSON parses a session.json file.
func parseSessionJSON(path string) (model.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Session{}, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return model.Session{}, err
	}

	return session, nil
}
