// SPDX-License-Identifier: MPL-2.0

package hsrt

// ResetProcessState returns the process-wide state to StateUninitialized so
// every test can start its own runtime.
func ResetProcessState() {
	processMu.Lock()
	defer processMu.Unlock()
	processState = StateUninitialized
}
