package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/MrSnakeDoc/appshelf/internal/utils"
)

// DefaultMaxBytes caps the size of a feed body.
const DefaultMaxBytes = 32 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader fetches the published spreadsheet as CSV, either over HTTP(S) or
// from a local file.
type Loader struct {
	location string
	client   *http.Client
	maxBytes int64
}

// NewLoader creates a loader for location. A nil client uses http.DefaultClient.
func NewLoader(location string, client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{
		location: location,
		client:   client,
		maxBytes: DefaultMaxBytes,
	}
}

// Location returns the feed URL or path.
func (l *Loader) Location() string {
	return l.location
}

// IsRemote reports whether the feed is fetched over HTTP.
func (l *Loader) IsRemote() bool {
	return strings.HasPrefix(l.location, "http://") || strings.HasPrefix(l.location, "https://")
}

// Load reads the feed and returns its data rows. The header row is dropped.
func (l *Loader) Load(ctx context.Context) ([][]string, error) {
	data, err := l.read(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed csv: %w", err)
	}
	if len(rows) == 0 {
		return [][]string{}, nil
	}
	return rows[1:], nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if !l.IsRemote() {
		data, err := os.ReadFile(l.location)
		if err != nil {
			return nil, fmt.Errorf("failed to read feed file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch feed: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, errors.New("feed body exceeds size limit")
	}
	return data, nil
}

// parseCSV accepts ragged rows and stray quotes, as spreadsheet exports
// are not always strict.
func parseCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return r.ReadAll()
}
