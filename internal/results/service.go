package results

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/storage"
)

var ErrUnknownTest = errors.New("results: unknown test")

// CSVHeader is the column order of ExportCSV.
var CSVHeader = []string{"date", "label", "category", "eye", "value", "unit", "notes", "distanceCm"}

type Repository interface {
	CreateResult(ctx context.Context, in storage.Result) error
	ListResults(ctx context.Context, filter storage.ResultListFilter) ([]storage.Result, error)
	DeleteResults(ctx context.Context) (int64, error)
}

type Filter struct {
	Category string
	Eye      string
	Text     string
}

type Input struct {
	TestID     string
	Eye        model.Eye
	Value      string
	Unit       string
	Notes      string
	DistanceCM *float64
	RecordedAt time.Time
}

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
	log   *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, now: time.Now, newID: uuid.NewString, log: log.Named("results")}
}

// Add records one result. Label and category come from the test table.
func (s *Service) Add(ctx context.Context, in Input) (model.TestResult, error) {
	meta, ok := LookupTest(strings.TrimSpace(in.TestID))
	if !ok {
		return model.TestResult{}, fmt.Errorf("%w: %q", ErrUnknownTest, in.TestID)
	}
	eye := in.Eye
	if eye == "" {
		eye = model.EyeBoth
	}
	recorded := in.RecordedAt
	if recorded.IsZero() {
		recorded = s.now()
	}
	out := model.TestResult{
		ID:         s.newID(),
		TestID:     meta.ID,
		Label:      meta.Label,
		Category:   meta.Category,
		Eye:        model.Eye(strings.ToUpper(string(eye))),
		Value:      strings.TrimSpace(in.Value),
		Unit:       strings.TrimSpace(in.Unit),
		Notes:      strings.TrimSpace(in.Notes),
		DistanceCM: in.DistanceCM,
		RecordedAt: recorded.UTC(),
	}
	if err := out.Validate(); err != nil {
		return model.TestResult{}, err
	}
	if err := s.repo.CreateResult(ctx, toRecord(out, s.now())); err != nil {
		return model.TestResult{}, fmt.Errorf("store result: %w", err)
	}
	s.log.Info("result recorded", zap.String("test", out.TestID), zap.String("eye", string(out.Eye)))
	return out, nil
}

// List returns results newest first. "all" matches any category or eye.
func (s *Service) List(ctx context.Context, f Filter) ([]model.TestResult, error) {
	rows, err := s.repo.ListResults(ctx, storage.ResultListFilter{
		Category: wildcard(f.Category),
		Eye:      strings.ToUpper(wildcard(f.Eye)),
		Text:     f.Text,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.TestResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRecord(row))
	}
	return out, nil
}

func (s *Service) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteResults(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("results cleared", zap.Int64("count", n))
	return n, nil
}

// ExportCSV writes the filtered results with CSVHeader as the first row.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, f Filter) (int, error) {
	items, err := s.List(ctx, f)
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return 0, err
	}
	for _, r := range items {
		distance := ""
		if r.DistanceCM != nil {
			distance = strconv.FormatFloat(*r.DistanceCM, 'f', -1, 64)
		}
		row := []string{
			r.RecordedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
			r.Label,
			string(r.Category),
			string(r.Eye),
			r.Value,
			r.Unit,
			r.Notes,
			distance,
		}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(items), cw.Error()
}

func wildcard(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func toRecord(r model.TestResult, created time.Time) storage.Result {
	return storage.Result{
		ID:         r.ID,
		TestID:     r.TestID,
		Label:      r.Label,
		Category:   string(r.Category),
		Eye:        string(r.Eye),
		Value:      r.Value,
		Unit:       r.Unit,
		Notes:      r.Notes,
		DistanceCM: r.DistanceCM,
		RecordedAt: r.RecordedAt,
		CreatedAt:  created,
	}
}

func fromRecord(r storage.Result) model.TestResult {
	return model.TestResult{
		ID:         r.ID,
		TestID:     r.TestID,
		Label:      r.Label,
		Category:   model.TestCategory(r.Category),
		Eye:        model.Eye(r.Eye),
		Value:      r.Value,
		Unit:       r.Unit,
		Notes:      r.Notes,
		DistanceCM: r.DistanceCM,
		RecordedAt: r.RecordedAt,
	}
}
