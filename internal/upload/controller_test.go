package upload

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/internal/client"
	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

type blockingEnhancer struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	result  types.EnhancementResult
	err     error
}

func (b *blockingEnhancer) Enhance(ctx context.Context, fileName string, content []byte) (types.EnhancementResult, error) {
	if b.calls.Add(1) == 1 && b.started != nil {
		close(b.started)
	}
	if b.release != nil {
		<-b.release
	}
	return b.result, b.err
}

func TestSubmitWithoutFile(t *testing.T) {
	enh := &blockingEnhancer{}
	c := NewController(enh, nil, errors.NewNopLogger())

	_, err := c.Submit(context.Background())
	require.Error(t, err)

	assert.True(t, errors.HasCode(err, errors.ErrCodeNoFileSelected))
	assert.Equal(t, "Please upload a resume first!", errors.UserMessage(err))
	assert.Equal(t, int32(0), enh.calls.Load())
	assert.Equal(t, Idle, c.Snapshot().State)
}

func TestConcurrentSubmitIssuesOneRequest(t *testing.T) {
	enh := &blockingEnhancer{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  types.EnhancementResult{EnhancedText: "B"},
	}
	c := NewController(enh, nil, errors.NewNopLogger())
	require.NoError(t, c.SelectFile(File{Name: "resume.pdf", Content: []byte("x")}))

	first := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		first <- err
	}()
	<-enh.started
	assert.Equal(t, Enhancing, c.Snapshot().State)

	var wg sync.WaitGroup
	var rejected atomic.Int32
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Submit(context.Background()); errors.HasCode(err, errors.ErrCodeSubmitInFlight) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), rejected.Load())
	assert.True(t, errors.HasCode(c.SelectFile(File{Name: "other.pdf"}), errors.ErrCodeSubmitInFlight))

	close(enh.release)
	require.NoError(t, <-first)
	assert.Equal(t, int32(1), enh.calls.Load())
	assert.Equal(t, Selected, c.Snapshot().State)
	assert.Equal(t, "resume.pdf", c.Snapshot().FileName)
}

func TestFailureKeepsPreviousResult(t *testing.T) {
	enh := &blockingEnhancer{result: types.EnhancementResult{
		OriginalText: "A",
		EnhancedText: "B",
		Structured:   &types.ResumeRecord{Name: "Jane"},
		ATS:          &types.ATSScore{OverallScore: 80},
	}}
	c := NewController(enh, nil, errors.NewNopLogger())
	require.NoError(t, c.SelectFile(File{Name: "resume.pdf"}))
	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	before := c.Snapshot()

	enh.err = errors.NewServiceError(errors.ErrCodeServiceError, "boom", nil)
	_, err = c.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, "Enhancement failed", errors.UserMessage(err))
	assert.True(t, errors.HasCode(err, errors.ErrCodeServiceError))
	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, Selected, c.Snapshot().State)
}

func TestNetworkFailureKeepsItsMessage(t *testing.T) {
	enh := &blockingEnhancer{err: errors.NewNetworkError(errors.ErrCodeServiceUnavailable, "Failed to contact backend", stderrors.New("refused"))}
	c := NewController(enh, nil, errors.NewNopLogger())
	require.NoError(t, c.SelectFile(File{Name: "resume.pdf"}))

	_, err := c.Submit(context.Background())
	assert.Equal(t, "Failed to contact backend", errors.UserMessage(err))
	assert.Equal(t, Selected, c.Snapshot().State)
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewController(&blockingEnhancer{}, nil, errors.NewNopLogger())
	c.Ingest(types.EnhancementResult{
		EnhancedText: "B",
		Structured:   &types.ResumeRecord{Name: "Jane", Skills: []string{"X"}},
	})

	snap := c.Snapshot()
	snap.Structured.Skills[0] = "mutated"
	assert.Equal(t, []string{"X"}, c.Snapshot().Structured.Skills)
}

func TestIngestKeepsOriginalWhenAbsent(t *testing.T) {
	c := NewController(&blockingEnhancer{}, nil, errors.NewNopLogger())
	c.Ingest(types.EnhancementResult{OriginalText: "A", EnhancedText: "B"})
	c.Ingest(types.EnhancementResult{EnhancedText: "C", Structured: &types.ResumeRecord{Name: "Manual"}})

	snap := c.Snapshot()
	assert.Equal(t, "A", snap.OriginalText)
	assert.Equal(t, "C", snap.EnhancedText)
	assert.Equal(t, "Manual", snap.Structured.Name)
	assert.Nil(t, snap.ATS)
}

func TestClearFile(t *testing.T) {
	c := NewController(&blockingEnhancer{}, nil, errors.NewNopLogger())
	require.NoError(t, c.SelectFile(File{Name: "resume.pdf"}))
	require.NoError(t, c.ClearFile())

	assert.Equal(t, Idle, c.Snapshot().State)
	assert.Empty(t, c.Snapshot().FileName)
}

func TestEnhanceScenarioAgainstService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile(client.UploadField)
		require.NoError(t, err)
		defer file.Close()
		_, _ = io.Copy(io.Discard, file)
		assert.Equal(t, "resume.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"original_text":"A","enhanced_text":"B",
			"structured":{"name":"Jane","job_title":"Eng","summary":"S","skills":["X"],"experience":[]},
			"ats":{"overall_score":80,"keyword_score":70,"skill_match_score":90}}`)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Defaults()
	cfg.Service.BaseURL = srv.URL
	c := NewController(client.New(cfg, errors.NewNopLogger()), nil, errors.NewNopLogger())

	require.NoError(t, c.SelectFile(File{Name: "resume.pdf", Content: []byte("%PDF-1.4")}))
	_, err := c.Submit(context.Background())
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, "A", snap.OriginalText)
	assert.Equal(t, "B", snap.EnhancedText)
	require.NotNil(t, snap.ATS)
	assert.Equal(t, 80.0, snap.ATS.OverallScore)

	expected := types.ResumeRecord{Name: "Jane", JobTitle: "Eng", Summary: "S", Skills: []string{"X"}, Experience: []types.ExperienceEntry{}}
	effective := types.EffectiveRecord(types.ModeUpload, types.ResumeRecord{}, snap.Structured, snap.EnhancedText)
	assert.Equal(t, expected, effective)
}
