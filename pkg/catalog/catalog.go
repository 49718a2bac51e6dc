// Package catalog maps dataset keys to their metadata and storage location.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var ErrDatasetNotFound = errors.New("dataset not found")

// Entry describes one dataset.
type Entry struct {
	Key         string `koanf:"key" yaml:"key" toml:"key" json:"key"`
	Name        string `koanf:"name" yaml:"name" toml:"name" json:"name"`
	Description string `koanf:"description" yaml:"description" toml:"description" json:"description"`
	Location    string `koanf:"location" yaml:"location" toml:"location" json:"location"`
}

// NotFoundError reports an unknown key, or a known key whose file is gone.
type NotFoundError struct {
	Key      string
	Location string
}

func (e *NotFoundError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("dataset %q: %s does not exist", e.Key, e.Location)
	}
	return fmt.Sprintf("dataset %q not in catalog", e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrDatasetNotFound }

// Catalog is an immutable set of datasets.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// New builds a catalog. Keys must be unique and non-empty.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{entries: make([]Entry, 0, len(entries)), index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if e.Key == "" {
			return nil, errors.Errorf("catalog: entry %q has no key", e.Name)
		}
		if _, dup := c.index[e.Key]; dup {
			return nil, errors.Errorf("catalog: duplicate key %q", e.Key)
		}
		c.index[e.Key] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Default returns the built-in review datasets stored under dataDir.
func Default(dataDir string) *Catalog {
	loc := func(file string) string { return filepath.Join(dataDir, "datasets", file) }
	c, _ := New(
		Entry{
			Key:         "imdb",
			Name:        "IMDB Reviews",
			Description: "A dataset of 50,000 movie reviews for sentiment analysis",
			Location:    loc("imdb_reviews.csv"),
		},
		Entry{
			Key:         "amazon",
			Name:        "Amazon Product Reviews",
			Description: "Product reviews from Amazon's e-commerce platform",
			Location:    loc("amazon_reviews.csv"),
		},
		Entry{
			Key:         "twitter",
			Name:        "Twitter Sentiment",
			Description: "Tweets labeled with sentiment for classification",
			Location:    loc("twitter_sentiment.csv"),
		},
	)
	return c
}

// FromFile builds an ad-hoc entry for a user supplied file. The key is the
// file name without extensions.
func FromFile(path string) Entry {
	base := filepath.Base(path)
	key := strings.TrimSuffix(base, ".gz")
	key = strings.TrimSuffix(key, filepath.Ext(key))
	return Entry{Key: key, Name: base, Description: "imported file", Location: path}
}

// Merge returns a catalog with extra entries added. An extra entry with an
// existing key replaces it in place.
func (c *Catalog) Merge(extra ...Entry) (*Catalog, error) {
	entries := append([]Entry(nil), c.entries...)
	for _, e := range extra {
		if i, ok := c.index[e.Key]; ok {
			entries[i] = e
			continue
		}
		entries = append(entries, e)
	}
	return New(entries...)
}

// Get returns the entry for key. Keys are case sensitive.
func (c *Catalog) Get(key string) (Entry, error) {
	i, ok := c.index[key]
	if !ok {
		return Entry{}, &NotFoundError{Key: key}
	}
	return c.entries[i], nil
}

// Resolve is Get plus a check that the entry's file exists.
func (c *Catalog) Resolve(key string) (Entry, error) {
	e, err := c.Get(key)
	if err != nil {
		return Entry{}, err
	}
	if _, err := os.Stat(e.Location); err != nil {
		if os.IsNotExist(err) {
			return Entry{}, &NotFoundError{Key: key, Location: e.Location}
		}
		return Entry{}, errors.Wrapf(err, "dataset %q", key)
	}
	return e, nil
}

// List returns every entry in construction order.
func (c *Catalog) List() []Entry {
	return append([]Entry(nil), c.entries...)
}

func (c *Catalog) Len() int { return len(c.entries) }
