// SPDX-License-Identifier: BSD-3-Clause

package process

import "errors"

// ErrServicePanic indicates a service panicked during execution.
var ErrServicePanic = errors.New("service panicked during execution")
