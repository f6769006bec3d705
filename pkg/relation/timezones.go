package relation

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

//go:embed data/timezones.txt
var dataFS embed.FS

var (
	defaultOnce  sync.Once
	defaultZones []string
	defaultErr   error
)

// DefaultZones returns the embedded zone list, sorted.
func DefaultZones() ([]string, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open("data/timezones.txt")
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()
		defaultZones, defaultErr = LoadZones(f)
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]string{}, defaultZones...), nil
}

// LoadZones reads one zone per line. Blank lines, # comments and duplicates
// are skipped.
func LoadZones(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("relation: missing zone reader")
	}
	scanner := bufio.NewScanner(r)
	zones := make([]string, 0, 128)
	seen := map[string]struct{}{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		zones = append(zones, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sort.Strings(zones)
	return zones, nil
}

// TimezoneSource offers IANA zone names as relation options. Value and label
// are both the zone name.
type TimezoneSource struct {
	options []model.RelationOption
}

// NewTimezoneSource builds a source over zones, or over DefaultZones when
// zones is empty.
func NewTimezoneSource(zones ...string) (*TimezoneSource, error) {
	if len(zones) == 0 {
		var err error
		if zones, err = DefaultZones(); err != nil {
			return nil, fmt.Errorf("relation: load zones: %w", err)
		}
	}
	options := make([]model.RelationOption, 0, len(zones))
	for _, zone := range zones {
		options = append(options, model.RelationOption{ID: zone, Label: zone})
	}
	return &TimezoneSource{options: options}, nil
}

// Search ranks zones whose name starts with query ahead of other matches.
func (s *TimezoneSource) Search(ctx context.Context, query string, limit int) ([]model.RelationOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Filter(s.options, query, limit), nil
}
