// SPDX-License-Identifier: BSD-3-Clause

// Package process adapts a service.Service into an oversight.ChildProcess,
// so it can be added to an oversight supervision tree with panic recovery
// attributing the failure to the service by name.
package process
