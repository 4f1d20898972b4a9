package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/webhook"
)

// batchTTL bounds how long finished jobs stay queryable.
const batchTTL = time.Hour

// Batches holds in-flight and completed batch jobs.
type Batches struct {
	deps        *Deps
	concurrency int

	mu   sync.Mutex
	jobs map[string]*models.BatchJob
}

// NewBatches returns a job registry that scrapes at most concurrency URLs
// of a job at a time.
func NewBatches(d *Deps, concurrency int) *Batches {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Batches{deps: d, concurrency: concurrency, jobs: make(map[string]*models.BatchJob)}
}

// Post returns a handler for POST /api/batch/scrape. It creates a batch
// job, starts it in the background and returns its id.
func (b *Batches) Post() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		job := &models.BatchJob{
			ID:        "batch-" + uuid.NewString(),
			Status:    models.BatchProcessing,
			Total:     len(req.URLs),
			Results:   make([]*models.BatchItem, len(req.URLs)),
			CreatedAt: time.Now().Unix(),
		}

		b.mu.Lock()
		b.expire(time.Now().Add(-batchTTL).Unix())
		b.jobs[job.ID] = job
		b.mu.Unlock()

		go b.run(job, req)

		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     job.ID,
			Status: job.Status,
			Total:  job.Total,
		})
	}
}

// Get returns a handler for GET /api/batch/:id.
func (b *Batches) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		job, ok := b.jobs[c.Param("id")]
		var resp models.BatchStatusResponse
		if ok {
			resp = models.BatchStatusResponse{
				ID:        job.ID,
				Status:    job.Status,
				Completed: job.Completed,
				Total:     job.Total,
				Results:   append([]*models.BatchItem(nil), job.Results...),
			}
		}
		b.mu.Unlock()

		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "batch job not found", nil))
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// expire drops jobs created before cutoff. Caller holds b.mu.
func (b *Batches) expire(cutoff int64) {
	for id, job := range b.jobs {
		if job.CreatedAt < cutoff && job.Status != models.BatchProcessing {
			delete(b.jobs, id)
		}
	}
}

// run scrapes every URL of job with bounded concurrency.
func (b *Batches) run(job *models.BatchJob, req models.BatchRequest) {
	var g errgroup.Group
	g.SetLimit(b.concurrency)

	failed := 0
	for i, u := range req.URLs {
		g.Go(func() error {
			item := &models.BatchItem{URL: u}
			rec, err := b.deps.scrapeAndStore(context.Background(), u, req.Format)
			if err != nil {
				item.Error = toDetail(err)
			} else {
				item.Success = true
				item.Content = rec
			}

			b.mu.Lock()
			job.Results[i] = item
			job.Completed++
			if !item.Success {
				failed++
			}
			b.mu.Unlock()
			// Per-item failures are reported in the job, not to the group.
			return nil
		})
	}
	_ = g.Wait()

	b.mu.Lock()
	switch {
	case failed == job.Total:
		job.Status = models.BatchFailed
	case failed > 0:
		job.Status = models.BatchPartial
	default:
		job.Status = models.BatchCompleted
	}
	status := job.Status
	b.mu.Unlock()

	b.deps.logger().Info("batch job finished",
		"id", job.ID,
		"status", status,
		"failed", failed,
		"total", job.Total,
	)
	b.deps.Webhook.DeliverAsync(webhook.NewEvent(webhook.EventBatchCompleted, job.ID, gin.H{
		"status": status,
		"total":  job.Total,
		"failed": failed,
	}))
}

func toDetail(err error) *models.ErrorDetail {
	return &models.ErrorDetail{Code: models.ErrorCode(err), Message: err.Error()}
}
