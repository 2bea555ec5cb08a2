// Package curriculum owns the subject catalog and builds lesson lists for
// a subject. Built-in curricula are embedded YAML; more can be loaded from
// a directory at runtime.
package curriculum

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/peerpath/peerpath/internal/logger"
	"github.com/peerpath/peerpath/internal/quizgen"
)

//go:embed data/subjects.yaml data/curricula/*.yaml
var builtinFS embed.FS

// Subject is one entry of the catalog.
type Subject struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Category string `yaml:"category" json:"category"`
}

// curriculumFile is the on-disk shape of one curriculum. Title and category
// are only used when the slug is not already in the catalog.
type curriculumFile struct {
	Slug     string           `yaml:"slug"`
	Title    string           `yaml:"title"`
	Category string           `yaml:"category"`
	Lessons  []quizgen.Lesson `yaml:"lessons"`
}

// Catalog holds subjects and their base lesson lists.
type Catalog struct {
	mu        sync.RWMutex
	subjects  []Subject
	curricula map[string][]quizgen.Lesson
	log       *logger.Logger
}

// Builtin returns the catalog embedded in the binary.
func Builtin() (*Catalog, error) {
	c := &Catalog{
		curricula: make(map[string][]quizgen.Lesson),
		log:       logger.Nop(),
	}

	data, err := builtinFS.ReadFile("data/subjects.yaml")
	if err != nil {
		return nil, fmt.Errorf("read subjects: %w", err)
	}
	if err := yaml.Unmarshal(data, &c.subjects); err != nil {
		return nil, fmt.Errorf("parse subjects: %w", err)
	}

	files, err := fs.Glob(builtinFS, "data/curricula/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		f, err := parseCurriculum(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		c.add(f)
	}
	return c, nil
}

// Load returns the built-in catalog extended with the curricula in dir.
// An empty dir yields the built-ins only.
func Load(dir string, log *logger.Logger) (*Catalog, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	if log != nil {
		c.log = log
	}
	if dir == "" {
		return c, nil
	}
	if err := c.LoadDir(dir); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFromEnv is Load with PEERPATH_CURRICULUM_DIR.
func LoadFromEnv(log *logger.Logger) (*Catalog, error) {
	return Load(os.Getenv("PEERPATH_CURRICULUM_DIR"), log)
}

// LoadDir walks dir for .yaml and .yml curricula. A file's lessons replace
// any existing curriculum with the same slug. Invalid files are skipped.
func (c *Catalog) LoadDir(dir string) error {
	loaded := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		f, err := parseCurriculum(data)
		if err != nil {
			c.log.Warn("skipping invalid curriculum", "path", path, "error", err)
			return nil
		}
		c.add(f)
		loaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("load curricula from %s: %w", dir, err)
	}
	c.log.Debug("curricula loaded", "dir", dir, "count", loaded)
	return nil
}

func parseCurriculum(data []byte) (curriculumFile, error) {
	var f curriculumFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, err
	}
	f.Slug = strings.ToLower(strings.TrimSpace(f.Slug))
	if f.Slug == "" {
		return f, fmt.Errorf("missing slug")
	}
	if len(f.Lessons) == 0 {
		return f, fmt.Errorf("curriculum %q has no lessons", f.Slug)
	}
	return f, nil
}

func (c *Catalog) add(f curriculumFile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.curricula[f.Slug] = f.Lessons
	if !slices.ContainsFunc(c.subjects, func(s Subject) bool { return s.ID == f.Slug }) {
		title := f.Title
		if title == "" {
			title = humanize(f.Slug)
		}
		category := f.Category
		if category == "" {
			category = "other"
		}
		c.subjects = append(c.subjects, Subject{ID: f.Slug, Title: title, Category: category})
	}
}

// Subjects lists the catalog grouped by category. Categories keep the order
// in which they first appear; subjects keep their order within a category.
func (c *Catalog) Subjects() []Subject {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rank := map[string]int{}
	for _, s := range c.subjects {
		if _, ok := rank[s.Category]; !ok {
			rank[s.Category] = len(rank)
		}
	}
	out := slices.Clone(c.subjects)
	slices.SortStableFunc(out, func(a, b Subject) int {
		return rank[a.Category] - rank[b.Category]
	})
	return out
}

// Subject looks up a subject by id, also trying the id without an "ap-" prefix.
func (c *Catalog) Subject(id string) (Subject, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range slugKeys(id) {
		for _, s := range c.subjects {
			if s.ID == key {
				return s, true
			}
		}
	}
	return Subject{}, false
}

// Lessons returns a copy of the base lesson list for slug.
func (c *Catalog) Lessons(slug string) ([]quizgen.Lesson, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, key := range slugKeys(slug) {
		if ls, ok := c.curricula[key]; ok {
			return slices.Clone(ls), true
		}
	}
	return nil, false
}

// Titles returns every base lesson title across all curricula, sorted and
// without duplicates. It is the distractor pool for title-only quizzes.
func (c *Catalog) Titles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for _, ls := range c.curricula {
		for _, l := range ls {
			if t := strings.TrimSpace(l.Title); t != "" {
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// slugKeys returns the lookup keys for a slug: the lowercased slug and,
// when different, the slug with its "ap-" prefix removed.
func slugKeys(slug string) []string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	simple := strings.TrimPrefix(slug, "ap-")
	if simple == slug {
		return []string{slug}
	}
	return []string{slug, simple}
}

func humanize(slug string) string {
	return strings.ReplaceAll(strings.TrimPrefix(slug, "ap-"), "-", " ")
}
