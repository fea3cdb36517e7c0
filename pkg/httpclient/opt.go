package httpclient

import (
	// Packages
	opt "github.com/mutablelogic/go-eduplan/pkg/opt"
)

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithLimit sets the maximum number of results to return.
func WithLimit(limit uint) opt.Opt {
	return opt.SetUint(opt.LimitKey, limit)
}

// WithOffset sets the pagination offset.
func WithOffset(offset uint) opt.Opt {
	return opt.SetUint(opt.OffsetKey, offset)
}
