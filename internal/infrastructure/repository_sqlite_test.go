package infrastructure

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vscraper/vscraper-go/internal/domain"
)

func setupTestRepo(t *testing.T) *SQLiteJobRepository {
	t.Helper()
	repo, err := NewSQLiteJobRepository(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	return repo
}

func repoJob(url string) *domain.Job {
	return domain.NewJob(domain.DownloadRequest{
		URL:     url,
		Quality: domain.Quality1080p,
		Format:  domain.FormatMP4,
	})
}

func TestSQLiteJobRepository_CreateAndFind(t *testing.T) {
	repo := setupTestRepo(t)

	job := repoJob("https://example.com/v1")
	require.NoError(t, repo.Create(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.URL, found.URL)
	assert.Equal(t, domain.StateQueued, found.State)
	assert.Equal(t, domain.Quality1080p, found.Quality)
}

func TestSQLiteJobRepository_FindByID_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.FindByID("missing")
	assert.Error(t, err)
}

func TestSQLiteJobRepository_Update(t *testing.T) {
	repo := setupTestRepo(t)

	job := repoJob("https://example.com/v1")
	require.NoError(t, repo.Create(job))

	job.MarkRunning()
	job.AdvanceProgress(33.3)
	require.NoError(t, repo.Update(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateRunning, found.State)
	assert.Equal(t, 33.3, found.LastProgress)
}

func TestSQLiteJobRepository_Delete(t *testing.T) {
	repo := setupTestRepo(t)

	job := repoJob("https://example.com/v1")
	require.NoError(t, repo.Create(job))
	require.NoError(t, repo.Delete(job.ID))

	_, err := repo.FindByID(job.ID)
	assert.Error(t, err)
}

func TestSQLiteJobRepository_FindByState(t *testing.T) {
	repo := setupTestRepo(t)

	queued := repoJob("https://example.com/q")
	require.NoError(t, repo.Create(queued))

	done := repoJob("https://example.com/d")
	done.MarkCompleted()
	require.NoError(t, repo.Create(done))

	jobs, err := repo.FindByState(domain.StateQueued)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, queued.ID, jobs[0].ID)
}

func TestSQLiteJobRepository_FindAll_Filtered(t *testing.T) {
	repo := setupTestRepo(t)

	for _, url := range []string{"https://example.com/1", "https://example.com/2"} {
		require.NoError(t, repo.Create(repoJob(url)))
	}
	failed := repoJob("https://example.com/3")
	failed.MarkFailed("boom")
	require.NoError(t, repo.Create(failed))

	all, err := repo.FindAll(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyFailed, err := repo.FindAll(map[string]interface{}{"state": "failed"})
	require.NoError(t, err)
	require.Len(t, onlyFailed, 1)
	assert.Equal(t, failed.ID, onlyFailed[0].ID)
}

func TestSQLiteJobRepository_FailActive(t *testing.T) {
	repo := setupTestRepo(t)

	queued := repoJob("https://example.com/q")
	require.NoError(t, repo.Create(queued))

	running := repoJob("https://example.com/r")
	running.MarkRunning()
	require.NoError(t, repo.Create(running))

	completed := repoJob("https://example.com/c")
	completed.MarkCompleted()
	require.NoError(t, repo.Create(completed))

	require.NoError(t, repo.FailActive("server restarted before job finished"))

	for _, id := range []string{queued.ID, running.ID} {
		job, err := repo.FindByID(id)
		require.NoError(t, err)
		assert.Equal(t, domain.StateFailed, job.State)
		assert.Equal(t, "server restarted before job finished", job.Reason)
	}

	job, err := repo.FindByID(completed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, job.State)
}

func TestSQLiteJobRepository_GetStats(t *testing.T) {
	repo := setupTestRepo(t)

	states := []func(*domain.Job){
		func(j *domain.Job) {},
		func(j *domain.Job) { j.MarkRunning() },
		func(j *domain.Job) { j.MarkCompleted() },
		func(j *domain.Job) { j.MarkCompleted() },
		func(j *domain.Job) { j.MarkFailed("x") },
		func(j *domain.Job) { j.MarkCancelled() },
	}
	for i, mutate := range states {
		job := repoJob("https://example.com/" + string(rune('a'+i)))
		mutate(job)
		require.NoError(t, repo.Create(job))
	}

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.Total)
	assert.Equal(t, int64(1), stats.Queued)
	assert.Equal(t, int64(1), stats.Running)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Cancelled)
}

func TestSQLiteJobRepository_OptionsSurviveRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)

	req := domain.DownloadRequest{
		URL:     "https://example.com/opts",
		Quality: domain.Quality480p,
		Format:  domain.FormatMKV,
		Options: domain.AdvancedOptions{
			ExtractAudio:   true,
			DestinationDir: "/mnt/media",
			PlaylistLimit:  3,
			StrictPlaylist: true,
		},
	}
	job := domain.NewJob(req)
	require.NoError(t, repo.Create(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	got, err := found.Request()
	require.NoError(t, err)
	assert.Equal(t, req, got)
}
