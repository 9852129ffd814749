package dedupe

import (
	"github.com/projectdiscovery/hmap/store/hybrid"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// DiskBackend keeps words in a temporary on-disk hybrid map.
type DiskBackend struct {
	storage *hybrid.HybridMap
}

// NewDiskBackend creates the temporary storage.
func NewDiskBackend() (*DiskBackend, error) {
	db, err := hybrid.New(hybrid.DefaultDiskOptions)
	if err != nil {
		return nil, errorutil.NewWithTag("dedupe", "could not create disk storage: %v", err)
	}
	return &DiskBackend{storage: db}, nil
}

func (d *DiskBackend) Upsert(word string) error {
	return d.storage.Set(word, nil)
}

// IterCallback visits words in key order.
func (d *DiskBackend) IterCallback(callback func(word string)) error {
	d.storage.Scan(func(k, _ []byte) error {
		callback(string(k))
		return nil
	})
	return nil
}

func (d *DiskBackend) Cleanup() {
	_ = d.storage.Close()
}
