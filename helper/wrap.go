package helper

// This file contains the wrapper utilities: higher-order functions that
// bind TestRail actions to a test callable. They share one wrapping
// implementation instead of duplicating the client calls per action.

import "context"

// Func is a test callable that can be wrapped with TestRail actions.
type Func func(ctx context.Context) error

// wrap runs before, then fn, then after when fn succeeded.
func wrap(fn Func, before, after func(ctx context.Context)) Func {
	return func(ctx context.Context) error {
		if before != nil {
			before(ctx)
		}
		err := fn(ctx)
		if err == nil && after != nil {
			after(ctx)
		}
		return err
	}
}

// WrapComment returns fn wrapped so the comment is posted on every
// given case before fn runs.
func (h *Helper) WrapComment(comment string, caseIDs []string, fn Func) Func {
	return wrap(fn, func(ctx context.Context) {
		for _, cid := range caseIDs {
			h.Comment(ctx, cid, comment)
		}
	}, nil)
}

// WrapAttach returns fn wrapped so the file is attached to every given
// case before fn runs.
func (h *Helper) WrapAttach(path string, caseIDs []string, fn Func) Func {
	return wrap(fn, func(ctx context.Context) {
		for _, cid := range caseIDs {
			h.Attach(ctx, cid, path)
		}
	}, nil)
}

// WrapPass returns fn wrapped so every given case is marked passed
// after fn returns without error.
func (h *Helper) WrapPass(caseIDs []string, fn Func) Func {
	return wrap(fn, nil, func(ctx context.Context) {
		for _, cid := range caseIDs {
			h.PassCase(ctx, cid)
		}
	})
}
