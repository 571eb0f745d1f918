package infrastructure

import (
	"fmt"

	"github.com/vscraper/vscraper-go/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteJobRepository implements domain.JobRepository using SQLite
type SQLiteJobRepository struct {
	db *gorm.DB
}

// NewSQLiteJobRepository creates a new SQLite repository
func NewSQLiteJobRepository(dbPath string) (*SQLiteJobRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Job{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteJobRepository{db: db}, nil
}

// Create creates a new job record
func (r *SQLiteJobRepository) Create(job *domain.Job) error {
	return r.db.Create(job).Error
}

// Update updates an existing job record
func (r *SQLiteJobRepository) Update(job *domain.Job) error {
	return r.db.Save(job).Error
}

// Delete deletes a job by ID
func (r *SQLiteJobRepository) Delete(id string) error {
	return r.db.Delete(&domain.Job{}, "id = ?", id).Error
}

// FindByID finds a job by ID
func (r *SQLiteJobRepository) FindByID(id string) (*domain.Job, error) {
	var job domain.Job
	err := r.db.First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// FindByState finds jobs by state
func (r *SQLiteJobRepository) FindByState(state domain.JobState) ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := r.db.Where("state = ?", state).Find(&jobs).Error
	return jobs, err
}

// FindAll finds all jobs with optional filters
func (r *SQLiteJobRepository) FindAll(filters map[string]interface{}) ([]*domain.Job, error) {
	var jobs []*domain.Job
	query := r.db

	for key, value := range filters {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// FailActive marks every queued or running job as failed. Called once
// on startup so rows orphaned by a crash do not block their URLs.
func (r *SQLiteJobRepository) FailActive(reason string) error {
	return r.db.Model(&domain.Job{}).
		Where("state IN ?", []domain.JobState{domain.StateQueued, domain.StateRunning}).
		Updates(map[string]interface{}{"state": domain.StateFailed, "reason": reason}).Error
}

// GetStats returns aggregate job counts
func (r *SQLiteJobRepository) GetStats() (*domain.JobStats, error) {
	stats := &domain.JobStats{}

	if err := r.db.Model(&domain.Job{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	counts := []struct {
		state domain.JobState
		dest  *int64
	}{
		{domain.StateQueued, &stats.Queued},
		{domain.StateRunning, &stats.Running},
		{domain.StateCompleted, &stats.Completed},
		{domain.StateFailed, &stats.Failed},
		{domain.StateCancelled, &stats.Cancelled},
	}

	for _, c := range counts {
		if err := r.db.Model(&domain.Job{}).Where("state = ?", c.state).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	return stats, nil
}
