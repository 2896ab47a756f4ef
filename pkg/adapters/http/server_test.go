package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/talkweave"
	talkhttp "github.com/aretw0/talkweave/pkg/adapters/http"
	"github.com/aretw0/talkweave/pkg/adapters/memory"
	"github.com/aretw0/talkweave/pkg/domain"
	"github.com/aretw0/talkweave/pkg/ports/tests"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator records the ids it was called with and returns err.
type stubGenerator struct {
	ids   []int
	query string
	err   error
}

func (s *stubGenerator) result() (*talkweave.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &talkweave.Result{
		RunID:    "run-1",
		Sections: []*domain.SectionResult{{Title: "Talk", Body: "'''Paimon:''' Hi"}},
	}, nil
}

func (s *stubGenerator) GenerateTalks(ctx context.Context, ids ...int) (*talkweave.Result, error) {
	s.ids = ids
	return s.result()
}

func (s *stubGenerator) GenerateDialogues(ctx context.Context, ids ...int) (*talkweave.Result, error) {
	s.ids = ids
	return s.result()
}

func (s *stubGenerator) GenerateText(ctx context.Context, query string) (*talkweave.Result, error) {
	s.query = query
	return s.result()
}

func (s *stubGenerator) TraceRoots(ctx context.Context, id int) ([]int, error) {
	s.ids = []int{id}
	if s.err != nil {
		return nil, s.err
	}
	return []int{1}, nil
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetTalks_JSON(t *testing.T) {
	gen := &stubGenerator{}
	w := get(t, talkhttp.NewHandler(gen), "/talks/100,200")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{100, 200}, gen.ids)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		RunID    string `json:"run_id"`
		Wikitext string `json:"wikitext"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, "'''Paimon:''' Hi", body.Wikitext)
}

func TestGetDialogues_Text(t *testing.T) {
	gen := &stubGenerator{}
	w := get(t, talkhttp.NewHandler(gen), "/dialogues/7?format=text&wrap=true")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{7}, gen.ids)
	assert.Equal(t, "{{Dialogue Start}}\n'''Paimon:''' Hi\n{{Dialogue End}}", w.Body.String())
}

func TestSearch(t *testing.T) {
	gen := &stubGenerator{}
	w := get(t, talkhttp.NewHandler(gen), "/search?q=Hello+there")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello there", gen.query)

	w = get(t, talkhttp.NewHandler(gen), "/search")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRoots(t *testing.T) {
	gen := &stubGenerator{}
	w := get(t, talkhttp.NewHandler(gen), "/dialogues/3/roots")

	require.Equal(t, http.StatusOK, w.Code)
	var body talkhttp.RootsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, talkhttp.RootsResponse{ID: 3, Roots: []int{1}}, body)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("talk 9: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("text search: %w", domain.ErrUnsupported), http.StatusNotImplemented},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := talkhttp.NewHandler(&stubGenerator{err: tc.err})
			assert.Equal(t, tc.want, get(t, h, "/talks/9").Code)
			assert.Equal(t, tc.want, get(t, h, "/dialogues/9/roots").Code)
		})
	}
}

func TestBadIDs(t *testing.T) {
	h := talkhttp.NewHandler(&stubGenerator{})
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/talks/abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/dialogues/1,,2").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/dialogues/x/roots").Code)
}

func TestHealthVersionAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "talkweave_test_total"})
	reg.MustRegister(counter)
	counter.Inc()

	h := talkhttp.NewHandler(&stubGenerator{}, talkhttp.WithMetrics(reg))

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/version").Code)

	w := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "talkweave_test_total 1")

	assert.Equal(t, http.StatusNotFound, get(t, talkhttp.NewHandler(&stubGenerator{}), "/metrics").Code)
}

func TestWithGenerator(t *testing.T) {
	store, err := memory.NewFromNodes(tests.ContractNodes...)
	require.NoError(t, err)
	for _, u := range tests.ContractTalks {
		require.NoError(t, store.AddTalk(u))
	}
	h := talkhttp.NewHandler(talkweave.New(store, store))

	w := get(t, h, "/talks/100?format=text")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hello!")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/talks/999").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/dialogues/999/roots").Code)
}
