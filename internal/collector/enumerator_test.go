package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailstats/internal/gmail"
	"emailstats/internal/logger"
	errs "emailstats/pkg/errors"
)

func TestEnumerateFollowsCursorUntilAbsent(t *testing.T) {
	mb := newFakeMailbox()
	mb.pages[""] = gmail.ListPage{IDs: []gmail.MessageID{"a", "b"}, NextPageToken: "p2"}
	mb.pages["p2"] = gmail.ListPage{IDs: []gmail.MessageID{"c"}, NextPageToken: "p3"}
	mb.pages["p3"] = gmail.ListPage{IDs: []gmail.MessageID{"d"}}

	ids, err := NewEnumerator(mb, 500, logger.NopLogger()).Enumerate(context.Background(), "newer_than:1h")
	require.NoError(t, err)

	assert.Equal(t, []gmail.MessageID{"a", "b", "c", "d"}, ids)
	assert.Equal(t, []string{"", "p2", "p3"}, mb.listCalls)
}

func TestEnumerateStopsOnEmptyPageDespiteCursor(t *testing.T) {
	mb := newFakeMailbox()
	mb.pages[""] = gmail.ListPage{IDs: []gmail.MessageID{"a"}, NextPageToken: "p2"}
	mb.pages["p2"] = gmail.ListPage{NextPageToken: "p3"}
	mb.pages["p3"] = gmail.ListPage{IDs: []gmail.MessageID{"never"}}

	ids, err := NewEnumerator(mb, 500, logger.NopLogger()).Enumerate(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, []gmail.MessageID{"a"}, ids)
	assert.Equal(t, []string{"", "p2"}, mb.listCalls)
}

func TestEnumerateEmptyMailbox(t *testing.T) {
	mb := newFakeMailbox()

	ids, err := NewEnumerator(mb, 500, logger.NopLogger()).Enumerate(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEnumerateRequiresQuery(t *testing.T) {
	mb := newFakeMailbox()

	_, err := NewEnumerator(mb, 500, logger.NopLogger()).Enumerate(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
	assert.Empty(t, mb.listCalls)
}

func TestEnumerateListFailureIsProviderError(t *testing.T) {
	mb := newFakeMailbox()
	mb.listErr = errors.New("503 backend error")

	ids, err := NewEnumerator(mb, 500, logger.NopLogger()).Enumerate(context.Background(), "q")
	require.Error(t, err)
	assert.Nil(t, ids)
	assert.True(t, errs.IsProvider(err))
	assert.ErrorContains(t, err, "503 backend error")
}
