// SPDX-License-Identifier: MPL-2.0

// Package hsrt guards the lifetime of the GHC runtime inside a Go process.
//
// The GHC runtime must be initialised with hs_init before any exported
// Haskell function is called and shut down with hs_exit exactly once
// afterwards. Generated bindings implement Lifecycle with those two calls;
// this package decides when they run:
//
//	rt, err := mylib.Start()
//	if err != nil {
//		return err
//	}
//	defer rt.Close()
//
//	n, err := mylib.Foo(rt, 41)
//
// or, scoped:
//
//	err := hsrt.Run(lifecycle, func(rt *hsrt.Runtime) error {
//		return rt.Call(func() { ... })
//	})
//
// There is one runtime per process. GHC cannot be initialised again after
// hs_exit, so Start fails with ErrFinalized once a Runtime has been closed.
package hsrt
