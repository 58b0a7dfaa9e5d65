// internal/api/v2/statistics.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tsuchida/bunrui-go/internal/datastore"
)

// GetStatistics serves aggregate statistics over the stored results.
// Responses are cached briefly since the query scans the whole table.
func (c *Controller) GetStatistics(ctx echo.Context) error {
	if cached, found := c.statsCache.Get(statsCacheKey); found {
		if stats, ok := cached.(datastore.Statistics); ok {
			return ctx.JSON(http.StatusOK, stats)
		}
	}

	stats, err := c.DS.Statistics()
	if err != nil {
		return c.mapError(ctx, err, "failed to compute statistics")
	}

	c.statsCache.SetDefault(statsCacheKey, stats)
	return ctx.JSON(http.StatusOK, stats)
}
