// Package corpus loads the input strings for a discovery run: one string per
// line, in file order, with line terminators and surrounding whitespace
// stripped.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/repfinder/internal/motif"
	apperrors "github.com/Adithya-Monish-Kumar-K/repfinder/pkg/errors"
)

const maxLineSize = 64 * 1024 * 1024

// Stats describes a loaded corpus.
type Stats struct {
	Strings int
	Bytes   int64
	Longest int
	// Foreign counts symbols outside the alphabet. They are kept in the
	// strings but can never be part of a discovered pattern.
	Foreign int
}

// Load reads the corpus file at path.
func Load(path string, alphabet motif.Alphabet) (motif.Corpus, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Stats{}, apperrors.Newf(apperrors.ErrNotFound, apperrors.ExitUsage,
				"corpus file %s does not exist", path)
		}
		return nil, Stats{}, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, alphabet)
}

// Read parses a corpus from r. Blank lines are kept as empty strings so
// that row numbers in the exported table match line numbers.
func Read(r io.Reader, alphabet motif.Alphabet) (motif.Corpus, Stats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), maxLineSize)

	var corpus motif.Corpus
	var stats Stats
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		corpus = append(corpus, line)
		stats.Bytes += int64(len(line))
		if len(line) > stats.Longest {
			stats.Longest = len(line)
		}
		if alphabet != "" {
			for i := 0; i < len(line); i++ {
				if !alphabet.Contains(line[i]) {
					stats.Foreign++
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, Stats{}, fmt.Errorf("reading corpus line %d: %w", len(corpus)+1, err)
	}
	stats.Strings = len(corpus)
	if stats.Foreign > 0 {
		slog.Default().With("component", "corpus").Warn("corpus contains symbols outside the alphabet",
			"alphabet", string(alphabet),
			"count", stats.Foreign,
		)
	}
	if corpus == nil {
		corpus = motif.Corpus{}
	}
	return corpus, stats, nil
}
