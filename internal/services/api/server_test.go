package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/temirov/shellhint/internal/geometry"
	"github.com/temirov/shellhint/internal/services/api"
	"github.com/temirov/shellhint/internal/types"
)

type stubAssistant struct{}

func (stubAssistant) Complete(_ context.Context, document string, position geometry.Position) ([]types.Candidate, error) {
	if document == "fail" {
		return nil, errors.New("parser exploded")
	}
	if position.Character == 0 {
		return nil, nil
	}
	return []types.Candidate{{Label: "install", SortText: "33-0000", Kind: types.CandidateKindSubcommand}}, nil
}

func (stubAssistant) Hover(_ context.Context, document string, _ geometry.Position) (*types.Hover, error) {
	if document == "" {
		return nil, nil
	}
	return &types.Hover{Markdown: "`conda`"}, nil
}

func newTestHandler() http.Handler {
	server := api.NewServer(api.Config{
		Assistant: stubAssistant{},
		MetricsHandler: http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			_, _ = writer.Write([]byte("shellhint_metadata_lookups_total 0\n"))
		}),
	})
	return server.Handler()
}

func TestServerRunExposesCapabilities(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := api.NewServer(api.Config{Assistant: stubAssistant{}, Address: "127.0.0.1:0"})
	addressCh := make(chan string, 1)
	errorCh := make(chan error, 1)

	go func() {
		errorCh <- server.Run(ctx, func(address string) {
			addressCh <- address
		})
	}()

	select {
	case address := <-addressCh:
		client := http.Client{Timeout: 2 * time.Second}
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+address+"/capabilities", nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		response, err := client.Do(request)
		if err != nil {
			t.Fatalf("perform request: %v", err)
		}
		defer response.Body.Close()

		var body struct {
			Capabilities []api.Capability `json:"capabilities"`
		}
		if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(body.Capabilities) != 2 || body.Capabilities[0].Name != types.CommandComplete {
			t.Fatalf("unexpected capabilities %+v", body.Capabilities)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not start")
	}

	cancel()
	if err := <-errorCh; err != nil {
		t.Fatalf("server error: %v", err)
	}
}

func TestCommandEndpoints(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "completion", method: http.MethodPost, path: "/commands/complete", body: `{"text":"conda ","line":0,"character":6}`, expectedStatus: http.StatusOK, expectedBody: `"label":"install"`},
		{name: "completion_empty_list", method: http.MethodPost, path: "/commands/complete", body: `{"text":"conda","line":0,"character":0}`, expectedStatus: http.StatusOK, expectedBody: `"candidates":[]`},
		{name: "hover_found", method: http.MethodPost, path: "/commands/hover", body: `{"text":"conda","line":0,"character":1}`, expectedStatus: http.StatusOK, expectedBody: `"found":true`},
		{name: "hover_missing", method: http.MethodPost, path: "/commands/hover", body: `{"text":"","line":0,"character":0}`, expectedStatus: http.StatusOK, expectedBody: `"found":false`},
		{name: "malformed_body", method: http.MethodPost, path: "/commands/hover", body: `{`, expectedStatus: http.StatusBadRequest, expectedBody: "decode request"},
		{name: "negative_line", method: http.MethodPost, path: "/commands/complete", body: `{"text":"ls","line":-1,"character":0}`, expectedStatus: http.StatusBadRequest, expectedBody: "validate request"},
		{name: "executor_failure", method: http.MethodPost, path: "/commands/complete", body: `{"text":"fail","line":0,"character":1}`, expectedStatus: http.StatusInternalServerError, expectedBody: "parser exploded"},
		{name: "unknown_command", method: http.MethodPost, path: "/commands/define", body: `{}`, expectedStatus: http.StatusNotFound, expectedBody: `"error":"not found"`},
		{name: "wrong_field_type", method: http.MethodPost, path: "/commands/hover", body: `{"text":"conda","line":"zero"}`, expectedStatus: http.StatusBadRequest, expectedBody: "decode request"},
		{name: "wrong_method", method: http.MethodGet, path: "/commands/complete", expectedStatus: http.StatusMethodNotAllowed},
		{name: "metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK, expectedBody: "shellhint_metadata_lookups_total"},
	}

	handler := newTestHandler()
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			request := httptest.NewRequest(testCase.method, testCase.path, bytes.NewBufferString(testCase.body))
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			if recorder.Code != testCase.expectedStatus {
				t.Fatalf("status = %d, want %d (body %s)", recorder.Code, testCase.expectedStatus, recorder.Body.String())
			}
			if !strings.Contains(recorder.Body.String(), testCase.expectedBody) {
				t.Fatalf("body %q does not contain %q", recorder.Body.String(), testCase.expectedBody)
			}
		})
	}
}
