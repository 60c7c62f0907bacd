// Package general holds the built-in commands every deployment gets.
package general

import (
	"errors"

	"github.com/keshon/kurumi/internal/middleware"
	"github.com/keshon/kurumi/pkg/cmd"
)

// Register adds the built-in commands to reg, each wrapped in mws.
func Register(reg *cmd.Registry, mws ...cmd.Middleware) error {
	var errs []error
	add := func(c cmd.Command, extra ...cmd.Middleware) {
		all := append(append([]cmd.Middleware{}, extra...), mws...)
		if err := reg.Register(cmd.Apply(c, all...)); err != nil {
			errs = append(errs, err)
		}
	}

	add(&Help{})
	add(&Ping{})
	add(&History{}, middleware.WithGuildOnly())

	return errors.Join(errs...)
}
