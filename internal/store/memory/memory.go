// Package memory is an in-process budget store. Every read returns a deep
// copy so callers never share slices with the store.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"budgetmanage/internal/core"
	"budgetmanage/internal/ports"
)

type Store struct {
	mu        sync.Mutex
	budgets   []core.Budget
	templates []core.CategoryTemplate
}

func New(templates []core.CategoryTemplate) *Store {
	return &Store{templates: append([]core.CategoryTemplate(nil), templates...)}
}

// NewFromFiles seeds the template registry from base/seed_templates.txt.
// Each line is "title,theme"; blank lines and # comments are skipped. A
// missing or empty file falls back to a small default set.
func NewFromFiles(base string) *Store {
	templates := readTemplates(filepath.Join(base, "seed_templates.txt"))
	if len(templates) == 0 {
		templates = []core.CategoryTemplate{
			core.NewCategoryTemplate("食費", core.ThemeOrange),
			core.NewCategoryTemplate("日用品", core.ThemeTeal),
			core.NewCategoryTemplate("交通費", core.ThemeSky),
		}
	}
	return New(templates)
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, len(s.budgets))
	for i, b := range s.budgets {
		out[i] = b.Clone()
	}
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, id uuid.UUID) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.budgetIndex(id)
	if i < 0 {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, ports.ErrNotFound)
	}
	return s.budgets[i].Clone(), nil
}

func (s *Store) SaveBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.budgetIndex(b.ID); i >= 0 {
		s.budgets[i] = b.Clone()
		return nil
	}
	s.budgets = append(s.budgets, b.Clone())
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.budgetIndex(id)
	if i < 0 {
		return fmt.Errorf("budget %s: %w", id, ports.ErrNotFound)
	}
	s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
	return nil
}

func (s *Store) ActivateBudget(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.budgetIndex(id) < 0 {
		return fmt.Errorf("budget %s: %w", id, ports.ErrNotFound)
	}
	for i := range s.budgets {
		s.budgets[i].IsActive = s.budgets[i].ID == id
	}
	return nil
}

func (s *Store) ListTemplates(_ context.Context) ([]core.CategoryTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CategoryTemplate(nil), s.templates...), nil
}

// SaveTemplate inserts t or replaces the template with the same ID.
func (s *Store) SaveTemplate(_ context.Context, t core.CategoryTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == t.ID {
			s.templates[i] = t
			return nil
		}
	}
	s.templates = append(s.templates, t)
	return nil
}

// DeleteTemplate removes the template only. Categories that reference it
// keep the dangling id.
func (s *Store) DeleteTemplate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("template %s: %w", id, ports.ErrNotFound)
}

func (s *Store) budgetIndex(id uuid.UUID) int {
	for i := range s.budgets {
		if s.budgets[i].ID == id {
			return i
		}
	}
	return -1
}

func readTemplates(path string) []core.CategoryTemplate {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.CategoryTemplate
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		title, rawTheme, _ := strings.Cut(line, ",")
		theme, err := core.ParseTheme(rawTheme)
		if err != nil {
			continue
		}
		t := core.NewCategoryTemplate(title, theme)
		if t.Validate() != nil {
			continue
		}
		if _, dup := seen[t.Title]; dup {
			continue
		}
		seen[t.Title] = struct{}{}
		out = append(out, t)
	}
	return out
}
