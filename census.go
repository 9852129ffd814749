package bundler

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/projectdiscovery/bundler/internal/words"
	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"
	fileutil "github.com/projectdiscovery/utils/file"
	"golang.org/x/sync/errgroup"
)

// CensusOptions
type CensusOptions struct {
	// PartsDir receives one csv file per partition when set
	PartsDir string
	// WordParts names the part files, {{label}} is the partition label
	// if empty DefaultWordParts is used
	WordParts string
	// Limits output results (0 = no limit)
	Limit int
}

// Census enumerates every valid word up to a given length. The words
// below the prefix depth are found first, then each valid prefix is
// explored on its own by a pool of workers.
type Census struct {
	engine  *Engine
	Options *CensusOptions

	mu      sync.Mutex
	err     error
	resumed int
}

// NewCensus returns a census over the words of engine.
func NewCensus(engine *Engine, opts *CensusOptions) (*Census, error) {
	if engine == nil {
		return nil, errorutil.NewWithTag("bundler", "census needs an engine")
	}
	if opts == nil {
		opts = &CensusOptions{}
	}
	if opts.WordParts == "" {
		opts.WordParts = DefaultWordParts
	}
	if opts.PartsDir != "" {
		if err := os.MkdirAll(opts.PartsDir, 0755); err != nil {
			return nil, errorutil.NewWithTag("bundler", "could not create %v: %v", opts.PartsDir, err)
		}
	}
	return &Census{engine: engine, Options: opts}, nil
}

// Err returns the first error met by the last Execute once its channel
// is closed.
func (c *Census) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Census) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

// Prefixes runs the first phase: the valid words of length below the
// prefix depth and the valid prefixes of exactly that length. Every word
// starts with the master prefix, which is a candidate itself.
func (c *Census) Prefixes(depth int) (valid, prefixes []words.Word, err error) {
	e := c.engine
	master, err := e.Parse(e.opts.MasterPrefix)
	if err != nil {
		return nil, nil, err
	}
	if depth <= len(master) {
		return nil, nil, errorutil.NewWithTag("bundler", "depth %v must exceed the master prefix %q", depth, e.opts.MasterPrefix)
	}
	prefixDepth := e.opts.PrefixDepth
	if prefixDepth <= len(master) {
		prefixDepth = len(master) + 1
	}
	if prefixDepth > depth {
		prefixDepth = depth
	}
	if valid, prefixes, err = e.EnumerateSuffixes(master, prefixDepth, depth); err != nil {
		return nil, nil, err
	}
	if len(master) > 0 && e.ValidWord(master) {
		valid = append([]words.Word{master}, valid...)
	}
	return valid, prefixes, nil
}

// Execute enumerates the census of words of length at most depth and
// streams them. The channel is closed when the census is complete, ctx is
// cancelled or an error occurred (see Err).
//
// When PartsDir is set every partition is saved as it completes and the
// partitions already saved by an earlier run are read back instead of
// being enumerated again, so an interrupted census resumes where it
// stopped. Parts are only valid for the same engine, depth and master
// prefix.
func (c *Census) Execute(ctx context.Context, depth int) (<-chan string, error) {
	c.mu.Lock()
	c.err = nil
	c.resumed = 0
	c.mu.Unlock()

	valid, prefixes, err := c.firstPhase(depth)
	if err != nil {
		return nil, err
	}

	e := c.engine
	results := make(chan string, 100)
	go func() {
		defer close(results)
		gologger.Info().Msgf("%v prefixes to explore", len(prefixes))
		for _, w := range valid {
			select {
			case <-ctx.Done():
				return
			case results <- e.Format(w):
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.Workers)
		for i, prefix := range prefixes {
			label := strconv.Itoa(i + 1)
			prefix := prefix
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				found, ok, err := c.readPart(label)
				if err != nil {
					return err
				}
				if !ok {
					gologger.Verbose().Msgf("Loading suffixes of prefix %v (%v)", e.Format(prefix), label)
					if found, _, err = e.EnumerateSuffixes(prefix, depth, depth); err != nil {
						return err
					}
					if err := c.writePart(label, found); err != nil {
						return err
					}
				}
				for _, w := range found {
					select {
					case <-gctx.Done():
						return nil
					case results <- e.Format(w):
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			gologger.Error().Msgf("census failed: %v", err)
			c.fail(err)
		}
	}()
	return results, nil
}

// firstPhase returns the result of Prefixes, read from the "0" and
// "prefixes" parts when both were saved.
func (c *Census) firstPhase(depth int) ([]words.Word, []words.Word, error) {
	if c.Options.PartsDir != "" && fileutil.FileExists(c.partPath("0")) && fileutil.FileExists(c.partPath("prefixes")) {
		valid, _, err := c.readPart("0")
		if err != nil {
			return nil, nil, err
		}
		prefixes, _, err := c.readPart("prefixes")
		if err != nil {
			return nil, nil, err
		}
		return valid, prefixes, nil
	}
	valid, prefixes, err := c.Prefixes(depth)
	if err != nil {
		return nil, nil, err
	}
	if err := c.writePart("0", valid); err != nil {
		return nil, nil, err
	}
	if err := c.writePart("prefixes", prefixes); err != nil {
		return nil, nil, err
	}
	return valid, prefixes, nil
}

// Resumed is the number of parts the last Execute read back from
// PartsDir.
func (c *Census) Resumed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumed
}

// ExecuteWithWriter runs the census and writes the distinct words as csv,
// in short-lex order, under a "word" header.
func (c *Census) ExecuteWithWriter(ctx context.Context, depth int, writer io.Writer) error {
	if writer == nil {
		return errorutil.NewWithTag("bundler", "writer destination cannot be nil")
	}
	results, err := c.Execute(ctx, depth)
	if err != nil {
		return err
	}
	dedupe, err := NewDedupe(results, c.EstimateBytes(depth))
	if err != nil {
		// keep the producer from blocking forever
		for range results {
		}
		return err
	}
	dedupe.Drain()
	if err = c.Err(); err == nil {
		err = ctx.Err()
	}
	if err != nil {
		for range dedupe.GetResults() {
		}
		return err
	}

	e := c.engine
	type entry struct{ word, key string }
	var merged []entry
	for word := range dedupe.GetResults() {
		merged = append(merged, entry{word: word})
	}
	for i := range merged {
		w, err := e.Parse(merged[i].word)
		if err != nil {
			return err
		}
		merged[i].key = e.Key(w)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].key < merged[j].key })
	gologger.Info().Msgf("Words %v", len(merged))

	out := csv.NewWriter(writer)
	if err := out.Write([]string{"word"}); err != nil {
		return err
	}
	for i, m := range merged {
		if c.Options.Limit > 0 && i == c.Options.Limit {
			break
		}
		if err := out.Write([]string{m.word}); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// EstimateBytes bounds the size of the census of words of length at most
// depth: the freely reduced words starting with an allowed letter.
func (c *Census) EstimateBytes(depth int) int {
	e := c.engine
	starts := 0
	for _, ok := range e.starts {
		if ok {
			starts++
		}
	}
	branch := float64(e.alphabet.Size() - 1)
	total, level := 0.0, float64(starts)
	for l := 1; l <= depth; l++ {
		total += level * float64(l+1)
		level *= branch
		if total > math.MaxInt32 {
			return math.MaxInt
		}
	}
	return int(total)
}

func (c *Census) partPath(label string) string {
	name := Replace(c.Options.WordParts, map[string]interface{}{"label": label})
	return filepath.Join(c.Options.PartsDir, name)
}

// readPart loads a saved partition. ok is false when there is none.
func (c *Census) readPart(label string) (found []words.Word, ok bool, err error) {
	if c.Options.PartsDir == "" {
		return nil, false, nil
	}
	path := c.partPath(label)
	if !fileutil.FileExists(path) {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, errorutil.NewWithTag("bundler", "could not open part %v: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, false, errorutil.NewWithTag("bundler", "could not read part %v: %v", path, err)
	}
	found = []words.Word{}
	for i, record := range records {
		if i == 0 && len(record) == 1 && record[0] == "word" {
			continue
		}
		if len(record) != 1 {
			return nil, false, errorutil.NewWithTag("bundler", "part %v line %v: want one column", path, i+1)
		}
		w, err := c.engine.Parse(record[0])
		if err != nil {
			return nil, false, errorutil.NewWithTag("bundler", "part %v line %v: %v", path, i+1, err)
		}
		found = append(found, w)
	}
	gologger.Verbose().Msgf("Resuming from %v", path)
	c.mu.Lock()
	c.resumed++
	c.mu.Unlock()
	return found, true, nil
}

// writePart saves a partition. The file only appears once complete.
func (c *Census) writePart(label string, found []words.Word) error {
	if c.Options.PartsDir == "" {
		return nil
	}
	path := c.partPath(label)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errorutil.NewWithTag("bundler", "could not create part %v: %v", path, err)
	}
	out := csv.NewWriter(f)
	_ = out.Write([]string{"word"})
	for _, w := range found {
		_ = out.Write([]string{c.engine.Format(w)})
	}
	out.Flush()
	if err := out.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
