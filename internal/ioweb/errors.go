package ioweb

import (
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// ServeError is returned when the HTTP server cannot listen.
func ServeError(addr string, err error) error {
	msg := `Cannot start HTTP server on <em>%s</em>

Choose another port with <em>gomi serve -p</em>.`
	vars := []any{addr}

	return &gn.Error{
		Code: errcode.ServeError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("serve on %s: %w", addr, err),
	}
}
