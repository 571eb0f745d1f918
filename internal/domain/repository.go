package domain

// JobRepository defines the interface for job persistence
type JobRepository interface {
	// Create creates a new job record
	Create(job *Job) error

	// Update updates an existing job record
	Update(job *Job) error

	// Delete deletes a job by ID
	Delete(id string) error

	// FindByID finds a job by ID
	FindByID(id string) (*Job, error)

	// FindByState finds jobs by state
	FindByState(state JobState) ([]*Job, error)

	// FindAll finds all jobs with optional filters
	FindAll(filters map[string]interface{}) ([]*Job, error)

	// FailActive marks every non-terminal job as failed with the given
	// reason. Used on startup to settle jobs orphaned by a crash.
	FailActive(reason string) error

	// GetStats returns aggregate job counts
	GetStats() (*JobStats, error)
}
