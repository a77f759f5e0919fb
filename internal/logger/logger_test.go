package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "debug", Output: &buf, Service: "test"})

	ctx := l.WithContext(context.Background())
	ctx = SetQueueID(ctx, "q-1")
	ctx = SetSiteID(ctx, "s-1")
	ctx = SetComponent(ctx, "runner")

	CtxInfo(ctx, "processed %d", 3)

	line := decodeLine(t, &buf)
	assert.Equal(t, "processed 3", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "q-1", line[FieldQueueID])
	assert.Equal(t, "s-1", line[FieldSiteID])
	assert.Equal(t, "runner", line[FieldComponent])
	assert.Equal(t, "test", line["service"])
	assert.Equal(t, "q-1", Field(ctx, FieldQueueID))
	assert.Empty(t, Field(ctx, FieldCampaignID))
}

func TestEntryMetricFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})
	ctx := SetRequestID(l.WithContext(context.Background()), "r-1")

	base := With(Fields{FieldCount: 2})
	base.WithCursor(50).WithStatus("running").Info(ctx, "chunk done")

	line := decodeLine(t, &buf)
	assert.Equal(t, float64(2), line[FieldCount])
	assert.Equal(t, float64(50), line[FieldCursor])
	assert.Equal(t, "running", line[FieldStatus])
	assert.Equal(t, "r-1", line[FieldRequestID])
	assert.Equal(t, "contentfactory", line["service"])
	assert.Len(t, base.fields, 1)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Format: "text", Output: &buf})
	ctx := l.WithContext(context.Background())

	CtxInfo(ctx, "hidden")
	assert.Zero(t, buf.Len())

	CtxWarn(ctx, "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	var console bytes.Buffer
	l := New(Options{Output: &console, File: &Rotation{Path: path, MaxSizeMB: 1}, FileOnly: true})

	CtxInfo(l.WithContext(context.Background()), "to file")
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Zero(t, console.Len())
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, GetDefault(), FromContext(context.Background()))
	assert.Same(t, GetDefault(), FromContext(nil)) //nolint:staticcheck

	prev := GetDefault()
	t.Cleanup(func() { SetDefaultLogger(prev) })
	l := New(Options{Service: "other"})
	SetDefaultLogger(l)
	SetDefaultLogger(nil)
	assert.Same(t, l, FromContext(context.Background()))
}
