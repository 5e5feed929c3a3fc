package results

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/visionary/internal/model"
	"github.com/sandeepkv93/visionary/internal/storage"
)

func newService(t *testing.T) *Service {
	t.Helper()
	repo, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return NewService(repo, nil)
}

func TestAddFillsMetadata(t *testing.T) {
	svc := newService(t)
	distance := 40.0
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	got, err := svc.Add(context.Background(), Input{TestID: "acuity-near", Eye: "od", Value: "20/25", DistanceCM: &distance, RecordedAt: at})
	require.NoError(t, err)

	_, err = uuid.Parse(got.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Near Visual Acuity (Tumbling E)", got.Label)
	assert.Equal(t, model.CategoryScore, got.Category)
	assert.Equal(t, model.EyeRight, got.Eye)
	assert.True(t, got.RecordedAt.Equal(at))
}

func TestAddRejectsBadInput(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, Input{TestID: "x-ray", Value: "1"})
	assert.True(t, errors.Is(err, ErrUnknownTest))

	_, err = svc.Add(ctx, Input{TestID: "amsler", Eye: "left", Value: "normal"})
	assert.True(t, errors.Is(err, model.ErrInvalidEye))

	_, err = svc.Add(ctx, Input{TestID: "amsler", Value: "  "})
	assert.Error(t, err)
}

func TestListFilterAndClear(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, in := range []Input{
		{TestID: "acuity-near", Eye: model.EyeRight, Value: "20/25"},
		{TestID: "amsler", Eye: model.EyeLeft, Value: "normal"},
		{TestID: "stereopsis", Eye: model.EyeBoth, Value: "60", Unit: "arcsec"},
	} {
		in.RecordedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := svc.Add(ctx, in)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, Filter{Category: "all", Eye: "all"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "stereopsis", all[0].TestID)

	self, err := svc.List(ctx, Filter{Category: "self"})
	require.NoError(t, err)
	require.Len(t, self, 1)
	assert.Equal(t, "amsler", self[0].TestID)

	byText, err := svc.List(ctx, Filter{Text: "acuity", Eye: "od"})
	require.NoError(t, err)
	require.Len(t, byText, 1)

	n, err := svc.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	empty, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExportCSV(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	distance := 33.5
	_, err := svc.Add(ctx, Input{
		TestID: "npc", Eye: model.EyeBoth, Value: "8", Unit: "cm (worst of 3)",
		Notes: `felt "pull", then blur`, DistanceCM: &distance,
		RecordedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := svc.ExportCSV(ctx, &buf, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "date,label,category,eye,value,unit,notes,distanceCm", lines[0])
	assert.Equal(t, `2025-03-01T09:00:00.000Z,Near Point of Convergence (NPC),score,OU,8,cm (worst of 3),"felt ""pull"", then blur",33.5`, lines[1])
}

func TestExportCSVEmpty(t *testing.T) {
	svc := newService(t)
	var buf bytes.Buffer
	n, err := svc.ExportCSV(context.Background(), &buf, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "date,label,category,eye,value,unit,notes,distanceCm\n", buf.String())
}
