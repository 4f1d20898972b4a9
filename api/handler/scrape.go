package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/clipper/models"
)

// Scrape returns a handler for POST /api/scrape.
//
// A stored record for the URL is returned as-is unless refresh is set;
// otherwise the page is scraped, persisted and returned.
func Scrape(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		ctx := c.Request.Context()
		if !req.Refresh {
			rec, err := d.Store.FindByURL(ctx, req.URL)
			switch {
			case err == nil:
				c.JSON(http.StatusOK, rec)
				return
			case models.ErrorCode(err) != models.ErrCodeNotFound:
				respondError(c, err)
				return
			}
		}

		rec, err := d.scrapeAndStore(ctx, req.URL, req.Format)
		if err != nil {
			d.logger().Warn("scrape failed", "url", req.URL, "error", err)
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
