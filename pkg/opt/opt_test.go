package opt_test

import (
	"errors"
	"testing"

	// Packages
	opt "github.com/mutablelogic/go-eduplan/pkg/opt"
	assert "github.com/stretchr/testify/assert"
)

func Test_opt_001(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply()
	assert.NoError(err)
	assert.NotNil(opts)
	assert.False(opts.Has(opt.LimitKey))
}

func Test_opt_002(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply(opt.SetUint(opt.LimitKey, 5), opt.SetUint(opt.OffsetKey, 10))
	assert.NoError(err)
	assert.Equal(uint(5), opts.GetUint(opt.LimitKey))
	assert.Equal(uint(10), opts.GetUint(opt.OffsetKey))

	query := opts.Query(opt.LimitKey)
	assert.Equal("5", query.Get(opt.LimitKey))
	assert.Empty(query.Get(opt.OffsetKey))
}

func Test_opt_003(t *testing.T) {
	assert := assert.New(t)
	bad := errors.New("bad option")
	_, err := opt.Apply(opt.Error(bad))
	assert.ErrorIs(err, bad)
}

func Test_opt_004(t *testing.T) {
	assert := assert.New(t)
	opts, err := opt.Apply(opt.SetString("name", " value "))
	assert.NoError(err)
	assert.Equal("value", opts.GetString("name"))
	assert.Empty(opts.GetString("missing"))
}
