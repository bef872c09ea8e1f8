package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// recordingClient is a proto.Client that records calls and fails on demand.
type recordingClient struct {
	method string
	params []byte
	err    error
}

func (c *recordingClient) Call(_ context.Context, _, method string, params interface{}) ([]byte, error) {
	c.method = method
	c.params, _ = json.Marshal(params)
	return nil, c.err
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestSetHeaders(t *testing.T) {
	t.Run("sends headers", func(t *testing.T) {
		logs := captureLogs(t)
		c := &recordingClient{}

		setHeaders(c, map[string]string{"Accept-Language": "en-IN"})

		if c.method != "Network.setExtraHTTPHeaders" {
			t.Errorf("method = %q", c.method)
		}
		if !strings.Contains(string(c.params), `"Accept-Language":"en-IN"`) {
			t.Errorf("params = %s", c.params)
		}
		if logs.Len() != 0 {
			t.Errorf("unexpected log output: %s", logs)
		}
	})

	t.Run("failure is logged", func(t *testing.T) {
		logs := captureLogs(t)
		c := &recordingClient{err: errors.New("target closed")}

		setHeaders(c, map[string]string{"Accept-Language": "en-IN"})

		out := logs.String()
		if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "target closed") {
			t.Errorf("expected a debug log with the error, got %q", out)
		}
	})
}
