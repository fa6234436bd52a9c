package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Conflict("duplicate"), http.StatusBadRequest}, // 冲突沿用 400 约定
		{Auth("no token"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{Internal("boom", errors.New("cause")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, As(tc.err).HTTPStatus(), tc.err.Error())
	}
}

func TestAsWrapsForeignErrors(t *testing.T) {
	plain := errors.New("driver exploded")
	ae := As(plain)
	assert.Equal(t, KindInternal, ae.Kind)
	assert.Equal(t, plain, ae.Err)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus())
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := NotFound("gone")
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(errors.New("other"), KindNotFound))
}

func TestErrorMessageFallback(t *testing.T) {
	cause := errors.New("cause")
	assert.Equal(t, "cause", (&Error{Kind: KindInternal, Err: cause}).Error())
	assert.Equal(t, "msg", (&Error{Kind: KindInternal, Msg: "msg", Err: cause}).Error())
	assert.Equal(t, cause, errors.Unwrap(&Error{Err: cause}))
}
