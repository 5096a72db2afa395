package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_PreservesCode(t *testing.T) {
	inner := NotFound("pitch")
	wrapped := Wrap(inner, "loading pitch for report")

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.Contains(t, wrapped.Error(), "loading pitch for report")
}

func TestWrap_ForeignErrorBecomesInternal(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("disk full"), "saving upload")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestWrap_NilPassesThrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "no-op"))
	assert.NoError(t, Wrapf(nil, "no-op %d", 1))
}

func TestUnwrapChain(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := Wrap(ExternalServiceError("transcription", cause), "processing chunk")

	require.True(t, stderrors.Is(wrapped, cause))
	assert.Equal(t, CodeExternalService, GetCode(wrapped))
}

func TestGetCode_UnknownForPlainErrors(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
	assert.False(t, HasCode(fmt.Errorf("plain"), CodeNotFound))
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err  *AppError
		code string
	}{
		{ConfigInvalid("bad"), CodeConfigInvalid},
		{ValidationError("bad"), CodeValidationError},
		{NotFound("user"), CodeNotFound},
		{Unauthorized("nope"), CodeUnauthorized},
		{DuplicateSession("s1"), CodeDuplicateSession},
		{DuplicateEmail("a@b.c"), CodeDuplicateEmail},
		{InternalError("boom"), CodeInternalError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.NotEmpty(t, tc.err.Error())
	}
}
