package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	actx, svc := newTestContext()
	r, err := NewDefaultRegistry(actx)
	require.NoError(t, err)
	defer r.Dispose()

	list := r.List()
	assert.Len(t, list, 17)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID(), list[i].ID())
	}

	a, ok := r.Get(ActionAddWatchExpression)
	require.True(t, ok)
	assert.Equal(t, "Add Expression", a.Label())

	require.NoError(t, r.Run(context.Background(), ActionAddWatchExpression, nil))
	assert.Len(t, svc.Snapshot().WatchExpressions, 1)

	err = r.Run(context.Background(), ActionAddWatchExpression, nil)
	assert.True(t, errors.Is(err, ErrActionDisabled), "unnamed watch blocks another add")

	err = r.Run(context.Background(), "nope", nil)
	assert.True(t, errors.Is(err, ErrActionNotFound))
}

func TestRegistryDuplicate(t *testing.T) {
	actx, _ := newTestContext()
	r := NewRegistry()
	defer r.Dispose()

	require.NoError(t, r.Register(NewStartAction(actx)))
	dup := NewStartAction(actx)
	defer dup.Dispose()
	assert.True(t, errors.Is(r.Register(dup), ErrDuplicateAction))
}

func TestRegistryDisposeReleasesActions(t *testing.T) {
	actx, svc := newTestContext()
	r, err := NewDefaultRegistry(actx)
	require.NoError(t, err)

	removeAll, _ := r.Get(ActionRemoveAllBreakpoints)
	r.Dispose()
	r.Dispose()

	assert.Empty(t, r.List())
	_, err = svc.AddBreakpoint("a.go", 1)
	require.NoError(t, err)
	assert.False(t, removeAll.Enabled())
}
