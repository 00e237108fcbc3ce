package main

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/paulexconde/complyform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWriter_ConcurrentLines(t *testing.T) {
	var buf bytes.Buffer
	w := &reportWriter{enc: json.NewEncoder(&buf)}

	report := models.ScoreReport{
		Breakdown:    map[string]models.SectionBreakdown{"A": {SectionID: "A", SectionName: "Labor", Score: 80, MaxScore: 100, Weight: 0.2}},
		TotalScore:   80,
		Grade:        "good",
		CalculatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%5 == 0 {
				w.fail()
				return
			}
			assert.NoError(t, w.write("supplier", report))
		}()
	}
	wg.Wait()

	scored, failed := w.counts()
	assert.Equal(t, 16, scored)
	assert.Equal(t, 4, failed)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 16)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &decoded))
	assert.Equal(t, "supplier", decoded["subjectId"])
	assert.Equal(t, "good", decoded["grade"])
	assert.Equal(t, "2026-01-02T03:04:05Z", decoded["calculatedAt"])
	assert.Contains(t, decoded["breakdown"], "A")
}
