package apperr

import (
	"errors"
	"net/http"
)

// Kind 业务错误类别，统一映射 HTTP 状态码
type Kind int

const (
	KindValidation Kind = iota // 400
	KindAuth                   // 401
	KindForbidden              // 403
	KindNotFound               // 404
	KindConflict               // 400，沿用既有客户端约定
	KindInternal               // 500
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error // 底层原因，只进日志不出响应
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "error"
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) error          { return &Error{Kind: KindValidation, Msg: msg} }
func Auth(msg string) error                { return &Error{Kind: KindAuth, Msg: msg} }
func Forbidden(msg string) error           { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error            { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error            { return &Error{Kind: KindConflict, Msg: msg} }
func Internal(msg string, err error) error { return &Error{Kind: KindInternal, Msg: msg, Err: err} }

// As 取出 *Error；非本包错误按 Internal 包一层
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
