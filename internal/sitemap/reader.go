package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/romangod6/company-sitemaps/internal/models"
)

var companyFilePattern = regexp.MustCompile(`/sitemap-companies-(\d+)\.xml$`)

// Summary describes a decoded root sitemap.
type Summary struct {
	Entries      int      `json:"entries"`
	UniqueLocs   int      `json:"uniqueLocations"`
	LastMods     []string `json:"lastModified"`
	ShardIndices []int    `json:"shardIndices"`
}

// DecodeURLSet decodes a <urlset> document.
func DecodeURLSet(r io.Reader) (*models.URLSet, error) {
	var set models.URLSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode urlset: %w", err)
	}
	return &set, nil
}

// ReadURLSet decodes the <urlset> document stored at path.
func ReadURLSet(path string) (*models.URLSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeURLSet(f)
}

// DecodeIndex decodes a <sitemapindex> document.
func DecodeIndex(r io.Reader) (*models.SitemapIndex, error) {
	var idx models.SitemapIndex
	if err := xml.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode sitemap index: %w", err)
	}
	return &idx, nil
}

// Summarize counts entries, distinct locations and lastmod values, and lists
// the company shard indices in the order they appear.
func Summarize(set *models.URLSet) *Summary {
	s := &Summary{Entries: len(set.URLs), ShardIndices: []int{}}
	locs := make(map[string]struct{}, len(set.URLs))
	mods := make(map[string]struct{})

	for _, u := range set.URLs {
		locs[u.Loc] = struct{}{}
		if u.LastMod != "" {
			mods[u.LastMod] = struct{}{}
		}
		if m := companyFilePattern.FindStringSubmatch(u.Loc); m != nil {
			n, _ := strconv.Atoi(m[1])
			s.ShardIndices = append(s.ShardIndices, n)
		}
	}

	s.UniqueLocs = len(locs)
	s.LastMods = make([]string, 0, len(mods))
	for m := range mods {
		s.LastMods = append(s.LastMods, m)
	}
	sort.Strings(s.LastMods)
	return s
}
