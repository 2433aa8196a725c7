package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/flowforge/agent/internal/interpolate"
	"github.com/flowforge/agent/internal/pipelineenv"
	"github.com/flowforge/agent/internal/pipelineerr"
	"github.com/flowforge/agent/internal/pipelinemodel"
)

// HTTPClient builds and sends the request described by args, then
// classifies the response per spec §4.4. The returned Result carries
// only the two env keys the task runner promotes into content
// (CMD_PREVIOUS_CONTENT / CMD_PREVIOUS_TYPE); content itself is left
// unset, matching "content is not set directly" in spec §4.4.
func HTTPClient(ctx context.Context, client *http.Client, args pipelinemodel.HTTPCommandArgs, env *pipelineenv.Environment) (Result, error) {
	if args.CommonContent.Env != nil {
		env.Extend(args.CommonContent.Env)
	}

	body := args.CommonContent.Content
	if !args.CommonContent.ContentSet {
		if prev, ok := env.Get(pipelineenv.KeyCmdPreviousContent); ok {
			body = prev
		}
	}

	method := args.HTTPArgs.Method
	url := args.HTTPArgs.URL
	if env.Len() > 0 {
		var err error
		method, err = interpolateScalarString(method, env)
		if err != nil {
			return Result{}, err
		}
		url, err = interpolateScalarString(url, env)
		if err != nil {
			return Result{}, err
		}
		body, err = interpolateBody(body, env)
		if err != nil {
			return Result{}, err
		}
	}

	var bodyReader io.Reader
	var bodyBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Result{}, pipelineerr.Wrap(pipelineerr.KindSerdeJSONError, "encoding request body", err)
		}
		bodyBytes = b
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), url, bodyReader)
	if err != nil {
		return Result{}, pipelineerr.Wrap(pipelineerr.KindInvalidURI, "building request", err)
	}
	for _, headerMap := range args.HTTPArgs.Headers {
		for name, value := range headerMap {
			req.Header.Add(name, encodeHeaderValue(value))
		}
	}
	if bodyBytes != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	expectation := args.Expectation
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, pipelineerr.Wrap(pipelineerr.KindReqwestError, "sending request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectation.StatusCode {
		return Result{}, pipelineerr.HTTPError(resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, pipelineerr.Wrap(pipelineerr.KindStdIOError, "reading response body", err)
	}

	contentType := resp.Header.Get("Content-Type")
	mimeType, _, _ := mime.ParseMediaType(contentType)

	out := pipelineenv.New()
	switch {
	case mimeType == "application/json" || mimeType == "text/json":
		var v any
		if err := json.Unmarshal(respBody, &v); err != nil {
			return Result{}, pipelineerr.Wrap(pipelineerr.KindSerdeJSONError, "decoding JSON response", err)
		}
		out.Insert(pipelineenv.KeyCmdPreviousContent, v)
		out.Insert(pipelineenv.KeyCmdPreviousType, "JSON")
	case strings.HasPrefix(mimeType, "text/") || mimeType == "application/xml":
		out.Insert(pipelineenv.KeyCmdPreviousContent, string(respBody))
		out.Insert(pipelineenv.KeyCmdPreviousType, mimeType)
	default:
		var v any
		if err := json.Unmarshal(respBody, &v); err == nil {
			out.Insert(pipelineenv.KeyCmdPreviousContent, v)
		} else {
			out.Insert(pipelineenv.KeyCmdPreviousContent, string(respBody))
		}
		out.Insert(pipelineenv.KeyCmdPreviousType, mimeType)
	}

	return Result{Env: out}, nil
}

// encodeHeaderValue applies the header-scalar encoding of spec §3: null
// serialises as empty, bool as "1"/"0", number as decimal, string as
// itself.
func encodeHeaderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func interpolateScalarString(s string, env *pipelineenv.Environment) (string, error) {
	return interpolate.SubstituteOnce(s, env, false)
}

// interpolateBody interpolates the body: if it's a string, interpolate
// the string; otherwise serialise to JSON, interpolate, then reparse
// (spec §4.4 step 2).
func interpolateBody(body any, env *pipelineenv.Environment) (any, error) {
	if body == nil {
		return nil, nil
	}
	if s, ok := body.(string); ok {
		out, err := interpolateScalarString(s, env)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return interpolate.SubstituteValueOnce(body, env, false)
}
