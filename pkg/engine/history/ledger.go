package history

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is the outcome of one loading run.
type Snapshot struct {
	Timestamp     int64   `json:"timestamp"`
	Strategy      string  `json:"strategy"`
	Source        string  `json:"source,omitempty"`
	TotalCount    int     `json:"total_count"`
	PlacedCount   int     `json:"placed_count"`
	UnplacedCount int     `json:"unplaced_count"`
	TotalValue    float64 `json:"total_value"`
	FillRatio     float64 `json:"fill_ratio"`
	DurationMs    float64 `json:"duration_ms"`
}

// Backend defines the storage interface for snapshots.
type Backend interface {
	Append(ctx context.Context, s Snapshot) error
	Load(ctx context.Context, n int) ([]Snapshot, error)
}

// Client records and reads run history.
type Client struct {
	backend Backend
}

// NewClient initializes a history client.
// A nil backend selects the default local ledger.
func NewClient(backend Backend) *Client {
	if backend == nil {
		backend = &FileBackend{}
	}
	return &Client{backend: backend}
}

// Append records a new snapshot.
func (c *Client) Append(ctx context.Context, s Snapshot) error {
	return c.backend.Append(ctx, s)
}

// LoadWindow returns the most recent n snapshots, oldest first.
func (c *Client) LoadWindow(ctx context.Context, n int) ([]Snapshot, error) {
	return c.backend.Load(ctx, n)
}

// NewLocalBackend creates a file-based backend at path.
func NewLocalBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

// FileBackend stores snapshots as JSON lines in a local file.
type FileBackend struct {
	Path string
}

func (b *FileBackend) path() (string, error) {
	if b.Path != "" {
		return b.Path, nil
	}
	return GetLedgerPath()
}

func (b *FileBackend) Append(_ context.Context, s Snapshot) error {
	path, err := b.path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

func (b *FileBackend) Load(_ context.Context, n int) ([]Snapshot, error) {
	path, err := b.path()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return []Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	history, err := decode(bufio.NewScanner(f))
	if err != nil {
		return nil, err
	}
	return tail(history, n), nil
}

// decode reads JSON lines, skipping lines that do not parse.
func decode(scanner *bufio.Scanner) ([]Snapshot, error) {
	var history []Snapshot
	for scanner.Scan() {
		var s Snapshot
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			continue
		}
		history = append(history, s)
	}
	return history, scanner.Err()
}

func tail(history []Snapshot, n int) []Snapshot {
	if n > 0 && len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

// GetLedgerPath provides the default local storage path.
func GetLedgerPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cargoload", "history.jsonl"), nil
}
