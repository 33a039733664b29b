package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/easel-labs/easel/pkg/domain/model"
	"github.com/easel-labs/easel/pkg/utils/logging"
)

const doneMarker = "[DONE]"

// streamEvent is the wire payload of one SSE event: either an action frame or
// an error sentinel.
type streamEvent struct {
	model.Action
	Error string `json:"error,omitempty"`
}

// Decoder reassembles `data: <json>` event records from a chunked byte
// stream and decodes each payload into an Action. A delimiter may be split
// across two reads, so incomplete trailing text is buffered until the next
// chunk arrives. Malformed payloads are logged and skipped; an explicit
// error sentinel aborts the stream.
type Decoder struct {
	r    io.Reader
	buf  []byte
	done bool
}

// NewDecoder creates a decoder reading SSE records from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next returns the next decoded action. It returns io.EOF once the stream's
// terminator record has been consumed, and ErrBackend when the backend sends
// an error sentinel.
func (d *Decoder) Next(ctx context.Context) (*model.Action, error) {
	for {
		if d.done {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payload, err := d.nextPayload()
		if err != nil {
			return nil, err
		}

		if payload == doneMarker {
			d.done = true
			return nil, io.EOF
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			// One malformed event must not invalidate the rest of the
			// session; skip it and keep reading.
			logging.From(ctx).Warn("skipping malformed stream event",
				"error", err.Error(),
				"payload_len", len(payload),
			)
			continue
		}

		if ev.Error != "" {
			return nil, goerr.Wrap(ErrBackend, ev.Error)
		}

		if !ev.Kind.IsValid() {
			logging.From(ctx).Warn("skipping stream event with unknown kind",
				"kind", string(ev.Kind),
			)
			continue
		}

		action := ev.Action
		return &action, nil
	}
}

// nextPayload returns the data payload of the next complete event record,
// reading more chunks from the transport as needed.
func (d *Decoder) nextPayload() (string, error) {
	for {
		if idx := indexEventEnd(d.buf); idx >= 0 {
			block := d.buf[:idx]
			d.buf = d.buf[idx+2:]
			payload := parseEventData(block)
			if payload == "" {
				continue
			}
			return payload, nil
		}

		chunk := make([]byte, 4096)
		n, err := d.r.Read(chunk)
		if n > 0 {
			d.buf = append(d.buf, chunk[:n]...)
			continue
		}
		if err == io.EOF {
			if len(strings.TrimSpace(string(d.buf))) == 0 {
				return "", io.EOF
			}
			return "", goerr.Wrap(io.ErrUnexpectedEOF, "stream ended without terminator",
				goerr.V("pending_bytes", len(d.buf)))
		}
		if err != nil {
			return "", goerr.Wrap(err, "failed to read stream")
		}
	}
}

func indexEventEnd(buf []byte) int {
	return bytes.Index(buf, []byte("\n\n"))
}

// parseEventData extracts and joins the data lines of one event block.
func parseEventData(block []byte) string {
	var parts []string
	for _, line := range strings.Split(string(block), "\n") {
		line = strings.TrimRight(line, "\r")
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			parts = append(parts, strings.TrimPrefix(rest, " "))
		}
	}
	return strings.Join(parts, "\n")
}
