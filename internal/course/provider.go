// Package course loads course structures for navigation rendering and keeps
// them in a bounded in-process cache.
package course

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
)

var (
	// cacheRequests is a singleton for the counter vec.
	cacheRequests *prometheus.CounterVec //nolint:gochecknoglobals
)

// newCacheRequestsCounter returns a counter for cache lookups by result.
func newCacheRequestsCounter() *prometheus.CounterVec {
	if cacheRequests == nil {
		cacheRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "course_structure_cache_requests_total",
				Help: "Number of course structure cache lookups, differentiated by result.",
			},
			[]string{"result"},
		)
	}

	return cacheRequests
}

// Provider loads course structures and caches them for the configured TTL.
type Provider struct {
	db       *gorm.DB
	cache    *ristretto.Cache[uint64, *Structure]
	ttl      time.Duration
	formats  Formats
	requests *prometheus.CounterVec
}

// ProviderConfig carries the cache settings and the format table.
type ProviderConfig struct {
	TTL     time.Duration
	MaxCost int64
	Formats Formats
}

// NewProvider creates a course structure provider.
func NewProvider(db *gorm.DB, cfg ProviderConfig) (*Provider, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if cfg.TTL == 0 {
		cfg.TTL = 5 * time.Minute //nolint: mnd
	}

	if cfg.MaxCost == 0 {
		cfg.MaxCost = 32 << 20 //nolint: mnd
	}

	cache, err := ristretto.NewCache(&ristretto.Config[uint64, *Structure]{
		NumCounters: cfg.MaxCost / 100 * 10, // ~10x expected items
		MaxCost:     cfg.MaxCost,
		BufferItems: 64, //nolint: mnd
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create course structure cache")
	}

	return &Provider{
		db:       db,
		cache:    cache,
		ttl:      cfg.TTL,
		formats:  cfg.Formats,
		requests: newCacheRequestsCounter(),
	}, nil
}

// Structure returns the structure of a course, from cache when possible.
func (p *Provider) Structure(courseID uint64) (*Structure, error) {
	if s, ok := p.cache.Get(courseID); ok {
		p.requests.WithLabelValues("hit").Inc()

		return s, nil
	}

	p.requests.WithLabelValues("miss").Inc()

	s, err := p.load(courseID)
	if err != nil {
		return nil, err
	}

	p.cache.SetWithTTL(courseID, s, estimateCost(s), p.ttl)

	return s, nil
}

// Invalidate drops a course from the cache, used after course or section edits.
func (p *Provider) Invalidate(courseID uint64) {
	p.cache.Del(courseID)
}

// Close releases the cache resources.
func (p *Provider) Close() {
	p.cache.Close()
}

func (p *Provider) load(courseID uint64) (*Structure, error) {
	var c models.Course

	if err := p.db.First(&c, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}

		return nil, err
	}

	var rows []models.Section

	if err := p.db.Where("course_id = ?", courseID).Order("position").Find(&rows).Error; err != nil {
		return nil, err
	}

	format := resolveFormat(p.formats, c.Format)

	s := &Structure{
		CourseID:     c.ID,
		Shortname:    c.Shortname,
		Fullname:     c.Fullname,
		Visible:      c.Visible,
		Format:       c.Format,
		FormatName:   format.Name,
		UsesSections: format.UsesSections,
		SectionNoun:  format.SectionNoun,
		Weekly:       format.Weekly,
		NumSections:  c.NumSections,
		Marked:       c.MarkedSection,
		StartDate:    c.StartDate,
		Sections:     make([]SectionInfo, 0, len(rows)),
	}

	for _, row := range rows {
		s.Sections = append(s.Sections, SectionInfo{
			Index:         row.Position,
			Name:          row.Name,
			Summary:       row.Summary,
			SummaryFormat: row.SummaryFormat,
			Visible:       row.Visible,
		})
	}

	return s, nil
}

// estimateCost approximates the in-memory size of a structure in bytes.
func estimateCost(s *Structure) int64 {
	cost := int64(96 + len(s.Shortname) + len(s.Fullname) + len(s.Format) + len(s.FormatName) + len(s.SectionNoun))

	for i := range s.Sections {
		cost += int64(48 + len(s.Sections[i].Name) + len(s.Sections[i].Summary) + len(s.Sections[i].SummaryFormat))
	}

	return cost
}
