package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/catalog"
	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/results"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func (a *API) ListExercises(c *gin.Context) {
	items := a.catalog.Find(catalog.Query{
		Text:     c.Query("q"),
		Category: c.Query("category"),
		Level:    c.Query("level"),
	})
	c.JSON(http.StatusOK, items)
}

func (a *API) GetExercise(c *gin.Context) {
	item, err := a.catalog.ByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(c, http.StatusNotFound, "exercise not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "could not load exercise")
		return
	}
	c.JSON(http.StatusOK, item)
}

type reminderResponse struct {
	Rule    model.SleepReminder `json:"rule"`
	Preview string              `json:"preview"`
	Summary string              `json:"summary"`
	Next    *string             `json:"next"`
}

func (a *API) GetReminder(c *gin.Context) {
	rule := a.reminder.Load(c.Request.Context())
	resp := reminderResponse{
		Rule:    rule,
		Preview: model.FormatPreview(rule),
		Summary: model.Summary(rule),
	}
	if next, ok := model.NextOccurrence(rule, a.now()); ok {
		s := next.Format(time.RFC3339)
		resp.Next = &s
	}
	c.JSON(http.StatusOK, resp)
}

func resultFilter(c *gin.Context) results.Filter {
	return results.Filter{Category: c.Query("category"), Eye: c.Query("eye"), Text: c.Query("q")}
}

type resultResponse struct {
	ID         string   `json:"id"`
	TestID     string   `json:"testId"`
	Label      string   `json:"label"`
	Category   string   `json:"category"`
	Eye        string   `json:"eye"`
	Value      string   `json:"value"`
	Unit       string   `json:"unit,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	DistanceCM *float64 `json:"distanceCm,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}

func (a *API) ListResults(c *gin.Context) {
	if a.results == nil {
		respondError(c, http.StatusServiceUnavailable, "results unavailable")
		return
	}
	items, err := a.results.List(c.Request.Context(), resultFilter(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not list results")
		return
	}
	out := make([]resultResponse, 0, len(items))
	for _, r := range items {
		out = append(out, resultResponse{
			ID: r.ID, TestID: r.TestID, Label: r.Label, Category: string(r.Category), Eye: string(r.Eye),
			Value: r.Value, Unit: r.Unit, Notes: r.Notes, DistanceCM: r.DistanceCM, Timestamp: r.RecordedAt.UnixMilli(),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) ExportResults(c *gin.Context) {
	if a.results == nil {
		respondError(c, http.StatusServiceUnavailable, "results unavailable")
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="visionary_results.csv"`)
	c.Status(http.StatusOK)
	if _, err := a.results.ExportCSV(c.Request.Context(), c.Writer, resultFilter(c)); err != nil {
		a.log.Warn("export results failed", zap.Error(err))
	}
}
