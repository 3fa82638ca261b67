package tweetexport_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/tweetexport"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := tweetexport.Errorf(tweetexport.ENOTFOUND, "tweet %q not found", "123")

	assert.Equal(t, tweetexport.ENOTFOUND, tweetexport.ErrorCode(err))
	assert.Equal(t, "tweet \"123\" not found", tweetexport.ErrorMessage(err))
}

func TestErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("delivering: %w", tweetexport.Errorf(tweetexport.EEXPORT, "disk full"))

	assert.Equal(t, tweetexport.EEXPORT, tweetexport.ErrorCode(err))
	assert.Equal(t, "disk full", tweetexport.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, tweetexport.EINTERNAL, tweetexport.ErrorCode(err))
	assert.Equal(t, "Internal error.", tweetexport.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, tweetexport.ErrorCode(nil))
	assert.Empty(t, tweetexport.ErrorMessage(nil))
}
