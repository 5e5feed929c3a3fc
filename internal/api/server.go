package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/catalog"
	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/results"
)

type ReminderSource interface {
	Load(ctx context.Context) model.SleepReminder
}

type ResultSource interface {
	List(ctx context.Context, f results.Filter) ([]model.TestResult, error)
	ExportCSV(ctx context.Context, w io.Writer, f results.Filter) (int, error)
}

type API struct {
	catalog  *catalog.Catalog
	reminder ReminderSource
	results  ResultSource
	now      func() time.Time
	log      *zap.Logger
}

func NewAPI(c *catalog.Catalog, reminder ReminderSource, res ResultSource, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{catalog: c, reminder: reminder, results: res, now: time.Now, log: log.Named("api")}
}

func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.GET("/exercises", a.ListExercises)
	api.GET("/exercises/:id", a.GetExercise)
	api.GET("/reminder", a.GetReminder)
	api.GET("/results", a.ListResults)
	api.GET("/results.csv", a.ExportResults)
	return r
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *API) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		a.log.Warn("http shutdown error", zap.Error(err))
		return err
	}
	return nil
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
