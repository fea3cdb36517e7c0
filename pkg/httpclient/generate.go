package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	// Packages
	eduplan "github.com/mutablelogic/go-eduplan"
	schema "github.com/mutablelogic/go-eduplan/pkg/schema"
	sse "github.com/mutablelogic/go-eduplan/pkg/sse"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// File is an upload attached to a generation request.
type File struct {
	Name string
	Body io.Reader
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	fieldMessage = "message"
	fieldThread  = "thread_id"
	fieldFiles   = "files"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GenerateStream posts a generation request to the named endpoint and
// streams decoded events to fn, in arrival order, until the response
// body is exhausted or fn returns an error. The request body is
// multipart form data, buffered so the gateway can replay it after a
// credential refresh.
//
// This is the one request that bypasses the base client's response
// decoding: the event framing must be decoded byte-for-byte by pkg/sse,
// so the raw body is read directly.
func (c *Client) GenerateStream(ctx context.Context, endpoint string, req schema.GenerateRequest, files []File, fn func(sse.Event) error) error {
	if endpoint == "" {
		return eduplan.ErrBadParameter.With("endpoint cannot be empty")
	}
	if fn == nil {
		return eduplan.ErrBadParameter.With("event callback is required")
	}

	// Build the multipart form body
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField(fieldMessage, req.Message); err != nil {
		return err
	}
	if req.ThreadID != "" {
		if err := w.WriteField(fieldThread, req.ThreadID); err != nil {
			return err
		}
	}
	for key, value := range req.Fields {
		if err := w.WriteField(key, value); err != nil {
			return err
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(fieldFiles, f.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	// Issue the request through the gateway
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.JoinPath(endpoint).String(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return httpresponse.Err(resp.StatusCode).With(strings.TrimSpace(string(data)))
	}

	// Decode events until the source is exhausted
	decoder := sse.NewDecoder(resp.Body, sse.WithLogger(c.log))
	for {
		evt, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
		if err := fn(*evt); err != nil {
			return err
		}
	}
}
