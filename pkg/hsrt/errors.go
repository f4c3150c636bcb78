// SPDX-License-Identifier: MPL-2.0

package hsrt

import "errors"

var (
	// ErrAlreadyRunning is returned by Start while another Runtime is open.
	ErrAlreadyRunning = errors.New("GHC runtime is already running")
	// ErrFinalized is returned by Start after the runtime has been shut down.
	// hs_init cannot be called again after hs_exit.
	ErrFinalized = errors.New("GHC runtime has been finalized and cannot be restarted")
	// ErrNotRunning is returned by Call after Close.
	ErrNotRunning = errors.New("GHC runtime is not running")
	// ErrNilLifecycle is returned by Start when no Lifecycle is given.
	ErrNilLifecycle = errors.New("nil lifecycle")
)
