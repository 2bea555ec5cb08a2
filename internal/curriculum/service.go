package curriculum

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/peerpath/peerpath/internal/enrich"
	"github.com/peerpath/peerpath/internal/logger"
	"github.com/peerpath/peerpath/internal/quizgen"
)

// TargetLessons is the number of lessons every curriculum is padded or cut to.
const TargetLessons = 8

// LessonEnricher rewrites a subject's base lessons. A nil or empty result
// means "use local expansion".
type LessonEnricher interface {
	Lessons(ctx context.Context, subject string, base []quizgen.Lesson) []enrich.LessonDraft
}

// Service builds lesson lists from the catalog.
type Service struct {
	catalog  *Catalog
	enricher LessonEnricher
	log      *logger.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEnricher enables remote lesson enrichment.
func WithEnricher(e LessonEnricher) ServiceOption {
	return func(s *Service) { s.enricher = e }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a Service over catalog.
func NewService(catalog *Catalog, opts ...ServiceOption) *Service {
	s := &Service{catalog: catalog, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the underlying catalog.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// BaseLessons returns the unexpanded lesson list for slug, padded to
// TargetLessons. Unknown subjects get synthesized topics.
func (s *Service) BaseLessons(slug string) []quizgen.Lesson {
	name := humanize(strings.ToLower(strings.TrimSpace(slug)))

	base, ok := s.catalog.Lessons(slug)
	if !ok || len(base) == 0 {
		base = make([]quizgen.Lesson, TargetLessons)
		for i := range base {
			base[i] = quizgen.Lesson{
				Title: fmt.Sprintf("%s — Topic %d", name, i+1),
				Content: fmt.Sprintf("This lesson covers key concepts of %s. "+
					"It introduces important ideas and practice exercises.", name),
			}
		}
		return base
	}

	for i := len(base); i < TargetLessons; i++ {
		seed := base[i%len(base)]
		base = append(base, quizgen.Lesson{
			Title:   fmt.Sprintf("%s — Advanced Topic %d", seed.Title, i+1),
			Content: seed.Content + " Deeper exploration and applied examples for advanced learners.",
		})
	}
	return base[:TargetLessons]
}

// GetCurriculum returns TargetLessons full lessons for slug. Enriched
// lessons are used when available, otherwise every base lesson is expanded
// locally. It never fails.
func (s *Service) GetCurriculum(ctx context.Context, slug string) []quizgen.Lesson {
	base := s.BaseLessons(slug)
	key := strings.ToLower(strings.TrimSpace(slug))

	if s.enricher != nil {
		if drafts := s.enricher.Lessons(ctx, key, base); len(drafts) > 0 {
			return normalize(drafts, base)
		}
		s.log.Debug("using local lesson expansion", "subject", key)
	}

	out := make([]quizgen.Lesson, len(base))
	for i, l := range base {
		out[i] = quizgen.Lesson{Title: l.Title, Content: ExpandContent(l.Title, l.Content)}
	}
	return out
}

// GetCurricula builds curricula for several subjects concurrently, running
// at most limit at a time. A non-positive limit means no bound. It fails
// only when ctx is cancelled before every subject has started.
func (s *Service) GetCurricula(ctx context.Context, slugs []string, limit int) (map[string][]quizgen.Lesson, error) {
	var mu sync.Mutex
	out := make(map[string][]quizgen.Lesson, len(slugs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, slug := range slugs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lessons := s.GetCurriculum(ctx, slug)
			mu.Lock()
			out[slug] = lessons
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build curricula: %w", err)
	}
	return out, nil
}

// GetLesson returns the lesson at 1-based index, clamped to the curriculum.
func (s *Service) GetLesson(ctx context.Context, slug string, index int) quizgen.Lesson {
	lessons := s.GetCurriculum(ctx, slug)
	return lessons[ClampIndex(index, len(lessons))]
}

// ClampIndex maps a 1-based index onto [0, n).
func ClampIndex(index, n int) int {
	return max(0, min(index-1, n-1))
}

func normalize(drafts []enrich.LessonDraft, base []quizgen.Lesson) []quizgen.Lesson {
	if len(drafts) > TargetLessons {
		drafts = drafts[:TargetLessons]
	}
	out := make([]quizgen.Lesson, len(drafts))
	for i, d := range drafts {
		var fallback quizgen.Lesson
		if i < len(base) {
			fallback = base[i]
		}

		title := firstNonEmpty(d.Title, fallback.Title, "Lesson")
		content := d.Content
		if strings.TrimSpace(content) == "" {
			content = ExpandContent(title, firstNonEmpty(d.Short, fallback.Content))
		}
		out[i] = quizgen.Lesson{Title: title, Content: content}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
