package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context and an optional transaction into repo calls.
// A nil Tx means the repo uses its own handle.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}

// DB picks the transaction when present, otherwise def, bound to the context.
func (c Context) DB(def *gorm.DB) *gorm.DB {
	t := c.Tx
	if t == nil {
		t = def
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return t.WithContext(ctx)
}
