package reader_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	osc "github.com/reoring/oscconnect"
	"github.com/reoring/oscconnect/reader"
)

func transformer(t *testing.T) *osc.Transformer {
	t.Helper()
	tr, err := osc.NewTransformer(osc.RecordOf("account",
		osc.NewField("id", osc.NullableOf(osc.Long())),
		osc.NewField("lookupName", osc.NullableOf(osc.String())),
	))
	require.NoError(t, err)
	return tr
}

func docs() []map[string]any {
	return []map[string]any{
		{"id": json.Number("1"), "lookupName": "a"},
		{"id": "not-a-number"},
		{"id": json.Number("3")},
	}
}

func TestReader_FailOnError(t *testing.T) {
	r := reader.New(reader.NewSliceSource(docs()...), transformer(t), reader.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	recs, err := r.ReadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, osc.ErrUnexpectedFormat)
	assert.Len(t, recs, 1)
	assert.Equal(t, reader.Stats{Read: 2, Emitted: 1}, r.Stats())
}

func TestReader_SkipOnErrorCountsSkipped(t *testing.T) {
	var logs bytes.Buffer
	runID := uuid.MustParse("6f1c2b8e-8a4d-4d0e-9b5c-1f2e3d4c5b6a")
	r := reader.New(reader.NewSliceSource(docs()...), transformer(t),
		reader.WithErrorPolicy(reader.SkipOnError),
		reader.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		reader.WithRunID(runID),
	)
	recs, err := r.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, reader.Stats{Read: 3, Emitted: 2, Skipped: 1}, r.Stats())

	id, _ := recs[1].Get("id")
	assert.Equal(t, int64(3), id)

	out := logs.String()
	assert.Contains(t, out, "skipping invalid document")
	assert.Contains(t, out, "field=id")
	assert.Contains(t, out, "run_id="+runID.String())

	_, err = r.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

type failingSource struct{}

func (failingSource) Next(context.Context) (map[string]any, error) {
	return nil, errors.New("connection reset")
}

func TestReader_SourceErrorsAreNotSkipped(t *testing.T) {
	r := reader.New(failingSource{}, transformer(t), reader.WithErrorPolicy(reader.SkipOnError))
	_, err := r.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 0, r.Stats().Read)
}

func TestJSONLinesSource(t *testing.T) {
	input := strings.NewReader("{\"id\": 1, \"lookupName\": \"a\"}\n\n{\"id\": 2}\n{\"id\": \n")
	src := reader.NewJSONLinesSource(input)
	ctx := context.Background()

	d, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), d["id"])

	d, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, json.Number("2"), d["id"])

	_, err = src.Next(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_JSONLinesEndToEnd(t *testing.T) {
	input := strings.NewReader(`{"id": 10, "lookupName": "x"}` + "\n" + `{"id": 11, "extra": [1,2]}` + "\n")
	r := reader.New(reader.NewJSONLinesSource(input), transformer(t))
	recs, err := r.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	b, err := recs[1].MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 11, "lookupName": null}`, string(b))
	assert.NotEqual(t, uuid.Nil, r.RunID())
}
