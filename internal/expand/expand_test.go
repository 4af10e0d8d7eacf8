package expand

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadharvest/leadharvest-cli/pkg/anthropic"
)

type fakeClient struct {
	text  string
	err   error
	calls int
}

func (f *fakeClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.text}},
	}, nil
}

func TestExpand_ParsesVariantLines(t *testing.T) {
	t.Parallel()

	e := New(&fakeClient{text: "dental clinic casablanca\ncabinet dentaire casablanca\ndentiste casablanca maroc\n"})
	got := e.Expand(context.Background(), "dentist casablanca")

	assert.Equal(t, []string{
		"dental clinic casablanca",
		"cabinet dentaire casablanca",
		"dentiste casablanca maroc",
	}, got)
}

func TestExpand_StripsListMarkersAndEchoes(t *testing.T) {
	t.Parallel()

	e := New(&fakeClient{text: "1. plumber rabat\n- Plumber Rabat\n* emergency plumber rabat\n\nplombier rabat"})
	got := e.Expand(context.Background(), "plumber rabat")

	assert.Equal(t, []string{"plumber rabat", "emergency plumber rabat", "plombier rabat"}, got)
}

func TestExpand_CapsVariantCount(t *testing.T) {
	t.Parallel()

	e := New(&fakeClient{text: "a1\na2\na3\na4\na5\na6"})
	got := e.Expand(context.Background(), "q")

	assert.Len(t, got, maxVariants)
}

func TestExpand_FailureReturnsNil(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: errors.New("401 unauthorized")}
	e := New(client)

	assert.Nil(t, e.Expand(context.Background(), "dentist casablanca"))
	assert.Equal(t, 1, client.calls, "permanent errors are not retried")
}

func TestExpand_EmptyInputsSkipTheAPI(t *testing.T) {
	t.Parallel()

	client := &fakeClient{text: "anything"}
	e := New(client)

	assert.Nil(t, e.Expand(context.Background(), "   "))
	assert.Nil(t, (*Expander)(nil).Expand(context.Background(), "dentist"))
	assert.Zero(t, client.calls)
}
