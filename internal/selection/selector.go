// Package selection picks random photos from the record list, optionally
// narrowed to a calendar month and/or year.
package selection

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/photo-diary/backend/internal/models"
)

var (
	// ErrStoreEmpty means there are no records at all.
	ErrStoreEmpty = errors.New("no photos")
	// ErrNoMatch means records exist but none satisfies the filter.
	ErrNoMatch = errors.New("no photos found for this filter")
	// ErrInvalidFilter is returned by ParseFilter for non-integer values.
	ErrInvalidFilter = errors.New("invalid filter")
)

// Rand is the source of randomness used for picking. It need not be cryptographically secure.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.Intn(n) }

// DefaultRand draws from math/rand's global source.
var DefaultRand Rand = defaultRand{}

// Filter narrows the candidate set. Nil fields are not applied.
type Filter struct {
	Month *int
	Year  *int
}

// IsZero reports whether no constraint is set.
func (f Filter) IsZero() bool {
	return f.Month == nil && f.Year == nil
}

// Result is a selected photo as exposed to clients.
type Result struct {
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploadedAt,omitempty"`
}

// NormalizeMonth maps a month filter value to a 0-indexed month.
//
// Both conventions are accepted for compatibility with existing clients:
// values 0-11 are already 0-indexed and pass through unchanged, while values
// greater than 11 are read as 1-12 and have 1 subtracted. The boundary is
// exactly >11, so 12 means December but 1 means February.
func NormalizeMonth(month int) int {
	if month > 11 {
		return month - 1
	}
	return month
}

// ParseFilter builds a Filter from raw query values. Blank values are absent.
func ParseFilter(monthRaw, yearRaw string) (Filter, error) {
	var f Filter

	if v := strings.TrimSpace(monthRaw); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: month %q", ErrInvalidFilter, monthRaw)
		}
		f.Month = &month
	}

	if v := strings.TrimSpace(yearRaw); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: year %q", ErrInvalidFilter, yearRaw)
		}
		f.Year = &year
	}

	return f, nil
}

// Matches reports whether p satisfies every constraint of f. Calendar fields
// are taken from the effective timestamp in UTC.
func (f Filter) Matches(p models.Photo) bool {
	ts := p.EffectiveTime().UTC()

	if f.Year != nil && ts.Year() != *f.Year {
		return false
	}
	if f.Month != nil && int(ts.Month())-1 != NormalizeMonth(*f.Month) {
		return false
	}
	return true
}

// Candidates returns the records matching f, in list order.
func Candidates(photos []models.Photo, f Filter) []models.Photo {
	if f.IsZero() {
		return photos
	}

	var out []models.Photo
	for _, p := range photos {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Select picks one record matching f uniformly at random.
func Select(photos []models.Photo, f Filter, rng Rand) (models.Photo, error) {
	if len(photos) == 0 {
		return models.Photo{}, ErrStoreEmpty
	}

	candidates := Candidates(photos, f)
	if len(candidates) == 0 {
		return models.Photo{}, ErrNoMatch
	}

	if rng == nil {
		rng = DefaultRand
	}
	return candidates[rng.IntN(len(candidates))], nil
}

// NewResult converts a stored record to its client view.
func NewResult(p models.Photo) Result {
	return Result{
		Filename:   p.Filename,
		URL:        p.ResolvedURL(),
		UploadedAt: models.FormatTimestamp(p.EffectiveTime()),
	}
}

// PickFile chooses one file name uniformly at random and returns it as a
// Result with a derived URL and no timestamp. It ignores any filter because
// bare files carry no upload metadata.
func PickFile(names []string, rng Rand) (Result, error) {
	if len(names) == 0 {
		return Result{}, ErrStoreEmpty
	}
	if rng == nil {
		rng = DefaultRand
	}

	name := names[rng.IntN(len(names))]
	return Result{
		Filename: name,
		URL:      models.Photo{Filename: name}.ResolvedURL(),
	}, nil
}
