package command

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelineerr"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// S4/S5: HTTP POST with JSON body, interpolated, echoed back by the server.
func TestHTTPClient_PostJSONWithInterpolatedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"json": body})
	}))
	defer srv.Close()

	env := pipelineenv.New()
	env.Insert("ME", "Prine")

	args := pipelinemodel.HTTPCommandArgs{
		HTTPArgs: pipelinemodel.HTTPArgs{
			URL:    srv.URL,
			Method: "POST",
			Headers: []map[string]any{
				{"Content-Type": "application/json"},
			},
		},
		CommonContent: pipelinemodel.CommonContent{
			ContentSet: true,
			Content:    map[string]any{"message": "greetings to ${ME}"},
		},
		Expectation: pipelinemodel.DefaultExpectation(),
	}

	res, err := HTTPClient(context.Background(), srv.Client(), args, env)
	require.NoError(t, err)

	typ, ok := res.Env.GetString(pipelineenv.KeyCmdPreviousType)
	require.True(t, ok)
	assert.Equal(t, "JSON", typ)

	content, ok := res.Env.Get(pipelineenv.KeyCmdPreviousContent)
	require.True(t, ok)
	m, ok := content.(map[string]any)
	require.True(t, ok)
	inner, ok := m["json"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "greetings to Prine", inner["message"])
}

// P7: a response with a different status code yields HttpError(code).
func TestHTTPClient_StatusMismatchFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	env := pipelineenv.New()
	args := pipelinemodel.HTTPCommandArgs{
		HTTPArgs:    pipelinemodel.HTTPArgs{URL: srv.URL, Method: "GET"},
		Expectation: pipelinemodel.DefaultExpectation(),
	}

	_, err := HTTPClient(context.Background(), srv.Client(), args, env)
	require.Error(t, err)
	pe, ok := pipelineerr.As(err)
	require.True(t, ok)
	assert.Equal(t, pipelineerr.KindHTTPError, pe.Kind)
}

func TestHTTPClient_FallsBackToPreviousContentBody(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"json": gotBody})
	}))
	defer srv.Close()

	env := pipelineenv.New()
	env.Insert(pipelineenv.KeyCmdPreviousContent, map[string]any{"message": "greetings to Omega"})

	args := pipelinemodel.HTTPCommandArgs{
		HTTPArgs:    pipelinemodel.HTTPArgs{URL: srv.URL, Method: "POST"},
		Expectation: pipelinemodel.DefaultExpectation(),
	}

	_, err := HTTPClient(context.Background(), srv.Client(), args, env)
	require.NoError(t, err)
	assert.Equal(t, "greetings to Omega", gotBody["message"])
}

func TestEncodeHeaderValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", encodeHeaderValue(nil))
	assert.Equal(t, "1", encodeHeaderValue(true))
	assert.Equal(t, "0", encodeHeaderValue(false))
	assert.Equal(t, "42", encodeHeaderValue(float64(42)))
	assert.Equal(t, "hi", encodeHeaderValue("hi"))
}
