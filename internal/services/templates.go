package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"budgetmanage/internal/amqp"
	"budgetmanage/internal/core"
)

func (s *BudgetService) ListTemplates(ctx context.Context) ([]core.CategoryTemplate, error) {
	templates, err := s.store.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

func (s *BudgetService) CreateTemplate(ctx context.Context, title string, theme core.Theme) (core.CategoryTemplate, error) {
	t := core.NewCategoryTemplate(title, theme)
	if err := t.Validate(); err != nil {
		return core.CategoryTemplate{}, err
	}
	if err := s.store.SaveTemplate(ctx, t); err != nil {
		return core.CategoryTemplate{}, fmt.Errorf("save template: %w", err)
	}
	slog.InfoContext(ctx, "Template created", "template_id", t.ID, "title", t.Title, "theme", t.Theme)
	return t, nil
}

// DeleteTemplate removes a template from the registry. Categories that use
// it are left in place and drop out of their budget's display list, so every
// affected budget gets an update event.
func (s *BudgetService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	events, err := s.deleteTemplate(ctx, id)
	s.publish(ctx, events...)
	return err
}

func (s *BudgetService) deleteTemplate(ctx context.Context, id uuid.UUID) ([]pendingEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return nil, fmt.Errorf("delete template: %w", err)
	}
	slog.InfoContext(ctx, "Template deleted", "template_id", id)

	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	var events []pendingEvent
	for _, b := range budgets {
		for _, c := range b.Categories {
			if c.CategoryTemplateID == id {
				events = append(events, pendingEvent{b.ID, amqp.ActionUpdated})
				break
			}
		}
	}
	return events, nil
}

func findTemplate(templates []core.CategoryTemplate, id uuid.UUID) (core.CategoryTemplate, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return core.CategoryTemplate{}, false
}
