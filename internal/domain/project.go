package domain

import (
	"context"
	"time"
)

// Project groups orders and belongs to exactly one user
type Project struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProjectRepository defines data access for projects
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	ListByUser(ctx context.Context, userID int64) ([]*Project, error)
}
