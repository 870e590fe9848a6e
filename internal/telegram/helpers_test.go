package telegram

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
)

const testToken = "123:ABC"

type apiCall struct {
	Method string
	Params map[string]any
}

// fakeAPI emulates the Bot API: every method answers with the configured raw
// JSON envelope, or {"ok":true,"result":true} when none is set.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	responses map[string]string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{responses: map[string]string{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := "/bot" + testToken + "/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		method := strings.TrimPrefix(r.URL.Path, prefix)

		body, _ := io.ReadAll(r.Body)
		params := map[string]any{}
		_ = json.Unmarshal(body, &params)

		f.mu.Lock()
		f.calls = append(f.calls, apiCall{Method: method, Params: params})
		resp, ok := f.responses[method]
		f.mu.Unlock()

		if !ok {
			resp = `{"ok":true,"result":true}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)

	return f, NewClient(srv.URL, testToken, 5*time.Second, logging.Nop{})
}

func (f *fakeAPI) set(method, resp string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method] = resp
}

func (f *fakeAPI) last() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return apiCall{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeAPI) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method)
	}
	return out
}
