package llm_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/m-mizutani/gt"

	"github.com/easel-labs/easel/pkg/domain/types"
	"github.com/easel-labs/easel/pkg/service/llm"
)

func TestDecoderNext(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a sequence of frames", func(t *testing.T) {
		stream := strings.Join([]string{
			`data: {"kind": "think", "text": "planning"}`,
			"",
			`data: {"kind": "create", "complete": true, "shapeId": "s1", "shape": {"type": "rectangle"}}`,
			"",
			"data: [DONE]",
			"",
			"",
		}, "\n")

		dec := llm.NewDecoder(strings.NewReader(stream))

		a1, err := dec.Next(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, a1.Kind).Equal(types.ActionThink)
		gt.Value(t, a1.Text).Equal("planning")
		gt.Bool(t, a1.Complete).False()

		a2, err := dec.Next(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, a2.Kind).Equal(types.ActionCreate)
		gt.Bool(t, a2.Complete).True()
		gt.Value(t, a2.ShapeID).Equal(types.RecordID("s1"))

		_, err = dec.Next(ctx)
		gt.Bool(t, errors.Is(err, io.EOF)).True()

		// EOF is sticky after the terminator.
		_, err = dec.Next(ctx)
		gt.Bool(t, errors.Is(err, io.EOF)).True()
	})

	t.Run("delimiter split across reads", func(t *testing.T) {
		stream := "data: {\"kind\": \"message\", \"text\": \"hi\", \"complete\": true}\n\ndata: [DONE]\n\n"
		dec := llm.NewDecoder(iotest.OneByteReader(strings.NewReader(stream)))

		a, err := dec.Next(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, a.Kind).Equal(types.ActionMessage)
		gt.Value(t, a.Text).Equal("hi")

		_, err = dec.Next(ctx)
		gt.Bool(t, errors.Is(err, io.EOF)).True()
	})

	t.Run("malformed event is skipped", func(t *testing.T) {
		stream := strings.Join([]string{
			"data: {not json",
			"",
			`data: {"kind": "think", "text": "ok"}`,
			"",
			"data: [DONE]",
			"",
			"",
		}, "\n")

		dec := llm.NewDecoder(strings.NewReader(stream))

		a, err := dec.Next(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, a.Text).Equal("ok")
	})

	t.Run("unknown kind is skipped", func(t *testing.T) {
		stream := strings.Join([]string{
			`data: {"kind": "teleport"}`,
			"",
			`data: {"kind": "message", "text": "hello"}`,
			"",
			"data: [DONE]",
			"",
			"",
		}, "\n")

		dec := llm.NewDecoder(strings.NewReader(stream))

		a, err := dec.Next(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, a.Kind).Equal(types.ActionMessage)
	})

	t.Run("error sentinel aborts the stream", func(t *testing.T) {
		stream := "data: {\"error\": \"model overloaded\"}\n\n"
		dec := llm.NewDecoder(strings.NewReader(stream))

		_, err := dec.Next(ctx)
		gt.Error(t, err).Required()
		gt.Bool(t, errors.Is(err, llm.ErrBackend)).True()
	})

	t.Run("truncated stream reports unexpected EOF", func(t *testing.T) {
		stream := `data: {"kind": "think", "text": "cut off`
		dec := llm.NewDecoder(strings.NewReader(stream))

		_, err := dec.Next(ctx)
		gt.Error(t, err).Required()
		gt.Bool(t, errors.Is(err, io.ErrUnexpectedEOF)).True()
	})

	t.Run("trailing whitespace without terminator is clean EOF", func(t *testing.T) {
		dec := llm.NewDecoder(strings.NewReader("\n  \n"))

		_, err := dec.Next(ctx)
		gt.Bool(t, errors.Is(err, io.EOF)).True()
	})

	t.Run("cancelled context stops decoding", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		dec := llm.NewDecoder(strings.NewReader("data: [DONE]\n\n"))
		_, err := dec.Next(cancelled)
		gt.Bool(t, errors.Is(err, context.Canceled)).True()
	})

	t.Run("multi-line data payload is joined", func(t *testing.T) {
		stream := strings.Join([]string{
			`data: {"kind": "message",`,
			`data:  "text": "joined"}`,
			"",
			"data: [DONE]",
			"",
			"",
		}, "\n")

		dec := llm.NewDecoder(strings.NewReader(stream))

		a, err := dec.Next(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, a.Text).Equal("joined")
	})
}
