// SPDX-License-Identifier: MPL-2.0

package hsrt

type (
	// Option configures Start and Run.
	Option func(*options)

	options struct {
		args []string
	}
)

// WithArgs passes RTS arguments (for example "+RTS", "-N4", "-RTS") to
// Lifecycle.Init. Without it Init receives an empty slice.
func WithArgs(args ...string) Option {
	return func(o *options) {
		o.args = append(o.args, args...)
	}
}
