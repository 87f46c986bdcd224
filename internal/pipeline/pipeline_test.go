package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"personagen/internal/genai"
	"personagen/internal/prompt"
	"personagen/internal/render"
	"personagen/lib/scrapers/reddit"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	profile     reddit.ProfileRecord
	items       []reddit.ActivityItem
	profileErr  error
	activityErr error
}

func (s *fakeSource) GetProfile(ctx context.Context, username string) (reddit.ProfileRecord, error) {
	if s.profileErr != nil {
		return reddit.ProfileRecord{}, s.profileErr
	}
	return s.profile, nil
}

func (s *fakeSource) GetActivity(ctx context.Context, username string, limit int) ([]reddit.ActivityItem, error) {
	if s.activityErr != nil {
		return nil, s.activityErr
	}
	if len(s.items) > limit {
		return s.items[:limit], nil
	}
	return s.items, nil
}

type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
}

func (g *fakeGenerator) Generate(ctx context.Context, payload prompt.Payload) (string, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

func testSource() *fakeSource {
	return &fakeSource{
		profile: reddit.ProfileRecord{
			Username:   "testuser",
			TotalKarma: 5000,
			Created:    testNow.AddDate(-2, 0, 0),
		},
		items: []reddit.ActivityItem{
			{Id: "t3_p1", Kind: reddit.KindPost, Subreddit: "golang", Title: "worker pools", Score: 20, Created: testNow.Add(-time.Hour)},
			{Id: "t1_c1", Kind: reddit.KindComment, Subreddit: "golang", Body: "use errgroup", Score: 4, Created: testNow.Add(-48 * time.Hour)},
		},
	}
}

const generatedPersona = `{"name": "The Builder", "age_range": "25-35", "occupation_category": "Technology"}`

func TestRun(t *testing.T) {
	gen := &fakeGenerator{responses: []string{generatedPersona}}

	result, err := Run(context.Background(), Options{
		Source:     testSource(),
		Generator:  gen,
		ProfileRef: "https://www.reddit.com/user/testuser",
		Format:     render.FormatJson,
		Now:        testNow,
	})
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)

	require.Equal(t, "The Builder", result.Persona.Name)
	require.Equal(t, "25-35", result.Persona.AgeRange)
	require.Equal(t, []string{"golang"}, result.Persona.Interests)
	require.Contains(t, string(result.Output), `"name": "The Builder"`)
}

func TestRunInvalidProfileRef(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Source:     testSource(),
		Generator:  &fakeGenerator{},
		ProfileRef: "https://www.reddit.com/r/golang",
		Format:     render.FormatText,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolve profile reference")
}

func TestRunProfileNotFound(t *testing.T) {
	source := testSource()
	source.profileErr = &reddit.FetchError{Kind: reddit.NotFound, Err: errors.New("404")}
	gen := &fakeGenerator{}

	_, err := Run(context.Background(), Options{
		Source:     source,
		Generator:  gen,
		ProfileRef: "testuser",
		Format:     render.FormatText,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "fetch profile")

	var fetchErr *reddit.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, reddit.NotFound, fetchErr.Kind)
	// nothing is generated when the fetch already failed
	require.Zero(t, gen.calls)
}

func TestRunRetriesTransientGeneration(t *testing.T) {
	gen := &fakeGenerator{
		errs:      []error{&genai.GenerationError{Kind: genai.ServiceError, Err: errors.New("503")}, nil},
		responses: []string{"", generatedPersona},
	}

	result, err := Run(context.Background(), Options{
		Source:     testSource(),
		Generator:  gen,
		ProfileRef: "testuser",
		Format:     render.FormatText,
		Now:        testNow,
	})
	require.NoError(t, err)
	require.Equal(t, 2, gen.calls)
	require.Equal(t, "The Builder", result.Persona.Name)
}

func TestRunDoesNotRetryQuota(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{&genai.GenerationError{Kind: genai.QuotaExceeded, Err: errors.New("429")}},
	}

	_, err := Run(context.Background(), Options{
		Source:     testSource(),
		Generator:  gen,
		ProfileRef: "testuser",
		Format:     render.FormatText,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "generate persona")
	require.Equal(t, 1, gen.calls)
}

func TestRunRetriesOnlyOnce(t *testing.T) {
	transient := &genai.GenerationError{Kind: genai.Timeout, Err: errors.New("deadline")}
	gen := &fakeGenerator{errs: []error{transient, transient}}

	_, err := Run(context.Background(), Options{
		Source:     testSource(),
		Generator:  gen,
		ProfileRef: "testuser",
		Format:     render.FormatText,
	})
	require.Error(t, err)
	require.Equal(t, 2, gen.calls)
}

func TestRunNarrativeResponseStillRenders(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"I could not produce JSON, sorry."}}

	result, err := Run(context.Background(), Options{
		Source:     testSource(),
		Generator:  gen,
		ProfileRef: "testuser",
		Format:     render.FormatText,
		Now:        testNow,
	})
	require.NoError(t, err)
	require.Equal(t, "testuser Persona", result.Persona.Name)
	require.NotEmpty(t, result.Persona.Warnings)
	require.Contains(t, string(result.Output), "RELIABILITY NOTES")
}
