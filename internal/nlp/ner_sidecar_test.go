package nlp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeSidecar 按字符偏移返回 text 中第一次出现 name 的位置
func newFakeSidecar(t *testing.T, name, label string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/labels", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]string{"labels": {"PERSON", "GPE", "ORG"}})
	})
	mux.HandleFunc("/ner", func(w http.ResponseWriter, r *http.Request) {
		var req nerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := nerResponse{Ents: []nerEntity{}}
		if idx := strings.Index(req.Text, name); idx >= 0 {
			start := len([]rune(req.Text[:idx]))
			resp.Ents = append(resp.Ents, nerEntity{Start: start, End: start + len([]rune(name)), Label: label})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSidecarRecognizer_Labels(t *testing.T) {
	srv := newFakeSidecar(t, "Jane", "PERSON")

	r, err := NewSidecarRecognizer(context.Background(), srv.URL+"/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, PipeNER, r.Name())
	assert.Equal(t, []string{"PERSON", "GPE", "ORG"}, r.Labels())
}

func TestSidecarRecognizer_ConvertsCharOffsets(t *testing.T) {
	srv := newFakeSidecar(t, "Zoë Smith", "PERSON")

	r, err := NewSidecarRecognizer(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)
	p, err := NewPipeline(nil, r)
	require.NoError(t, err)

	doc, err := p.Process(context.Background(), "Café owner Zoë Smith, chef.")
	require.NoError(t, err)
	require.Len(t, doc.Ents, 1)
	assert.Equal(t, "Zoë Smith", doc.EntityText(doc.Ents[0]))
}

func TestSidecarRecognizer_PropagatesErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/labels", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]string{"labels": {"PERSON"}})
	})
	mux.HandleFunc("/ner", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r, err := NewSidecarRecognizer(context.Background(), srv.URL, time.Second)
	require.NoError(t, err)

	doc := &Doc{Text: "Jane Doe"}
	err = r.Process(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNewSidecarRecognizer_Errors(t *testing.T) {
	_, err := NewSidecarRecognizer(context.Background(), "", time.Second)
	assert.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]string{"labels": {}})
	}))
	defer srv.Close()

	_, err = NewSidecarRecognizer(context.Background(), srv.URL, time.Second)
	assert.Error(t, err)
}
