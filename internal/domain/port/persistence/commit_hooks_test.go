package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ctxKey string

func TestAfterCommit(t *testing.T) {
	t.Run("runs immediately outside a unit", func(t *testing.T) {
		ran := false
		AfterCommit(context.Background(), func(context.Context) { ran = true })
		assert.True(t, ran)
	})

	t.Run("defers until Run inside a unit", func(t *testing.T) {
		ctx, hooks := WithCommitHooks(context.Background())
		var order []int
		AfterCommit(ctx, func(context.Context) { order = append(order, 1) })
		AfterCommit(ctx, func(context.Context) { order = append(order, 2) })
		assert.Empty(t, order)

		hooks.Run()
		assert.Equal(t, []int{1, 2}, order)

		hooks.Run()
		assert.Equal(t, []int{1, 2}, order, "hooks run once")
	})

	t.Run("discard drops hooks", func(t *testing.T) {
		ctx, hooks := WithCommitHooks(context.Background())
		ran := false
		AfterCommit(ctx, func(context.Context) { ran = true })
		hooks.Discard()
		hooks.Run()
		assert.False(t, ran)
	})

	t.Run("hooks see the caller context without unit values", func(t *testing.T) {
		parent := context.WithValue(context.Background(), ctxKey("request"), "r-1")
		unitCtx, hooks := WithCommitHooks(parent)
		unitCtx = context.WithValue(unitCtx, ctxKey("tx"), "open")

		cancelled, cancel := context.WithCancel(unitCtx)
		cancel()

		var seen context.Context
		AfterCommit(cancelled, func(ctx context.Context) { seen = ctx })
		hooks.Run()

		assert.Equal(t, "r-1", seen.Value(ctxKey("request")))
		assert.Nil(t, seen.Value(ctxKey("tx")))
		assert.NoError(t, seen.Err())
	})
}
