package bundler

import (
	"github.com/projectdiscovery/bundler/internal/dedupe"
	"github.com/projectdiscovery/gologger"
)

// MaxInMemoryDedupeSize is the largest estimated census (in bytes) merged
// in memory. Larger censuses are merged on disk (default : 100 MB)
var MaxInMemoryDedupeSize = 100 * 1024 * 1024

// DedupeBackend stores the distinct words of a census while partitions
// are merged.
type DedupeBackend interface {
	// Upsert adds word to the backend
	Upsert(word string) error
	// IterCallback calls callback on each distinct word
	IterCallback(callback func(word string)) error
	// Cleanup releases the storage
	Cleanup()
}

// Dedupe merges the words received from census partitions
type Dedupe struct {
	receive <-chan string
	backend DedupeBackend
	count   int
}

// Drain consumes the channel until it is closed. Words the backend failed
// to store are logged and dropped.
func (d *Dedupe) Drain() {
	for word := range d.receive {
		if err := d.backend.Upsert(word); err != nil {
			gologger.Error().Msgf("dedupe: could not store %v: %v", word, err)
			continue
		}
		d.count++
	}
}

// Received is the number of words drained, duplicates included.
func (d *Dedupe) Received() int { return d.count }

// GetResults streams the distinct words and then cleans up the backend.
func (d *Dedupe) GetResults() <-chan string {
	send := make(chan string, 100)
	go func() {
		defer close(send)
		defer d.backend.Cleanup()
		if err := d.backend.IterCallback(func(word string) {
			send <- word
		}); err != nil {
			gologger.Error().Msgf("dedupe: could not read merged words: %v", err)
		}
	}()
	return send
}

// NewDedupe returns a Dedupe reading from ch. byteLen is the estimated size
// of the census: past MaxInMemoryDedupeSize words are merged on disk.
func NewDedupe(ch <-chan string, byteLen int) (*Dedupe, error) {
	d := &Dedupe{receive: ch}
	if byteLen <= MaxInMemoryDedupeSize {
		d.backend = dedupe.NewMapBackend()
		return d, nil
	}
	gologger.Verbose().Msgf("estimated census size %v bytes, merging on disk", byteLen)
	backend, err := dedupe.NewDiskBackend()
	if err != nil {
		return nil, err
	}
	d.backend = backend
	return d, nil
}
