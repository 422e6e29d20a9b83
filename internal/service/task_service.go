package service

import (
	"context"
	"strings"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

// TaskUpdate holds the optional fields of a partial update. Nil pointers
// leave the corresponding field untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskService coordinates owner-scoped task operations.
type TaskService interface {
	Create(ctx context.Context, ownerID, title, description string) (*domain.Task, error)
	List(ctx context.Context, ownerID string) ([]domain.Task, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, id string, update TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	AdminListAll(ctx context.Context) ([]domain.TaskWithOwner, error)
}

type taskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) Create(ctx context.Context, ownerID, title, description string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationError("title required")
	}

	task := &domain.Task{
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return s.tasks.ListByOwner(ctx, ownerID)
}

func (s *taskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	return s.tasks.Get(ctx, id, ownerID)
}

func (s *taskService) Update(ctx context.Context, ownerID, id string, update TaskUpdate) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID, id string) error {
	return s.tasks.Delete(ctx, id, ownerID)
}

func (s *taskService) AdminListAll(ctx context.Context) ([]domain.TaskWithOwner, error) {
	return s.tasks.ListAllWithOwners(ctx)
}
