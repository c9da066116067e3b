// SPDX-License-Identifier: BSD-3-Clause

package id

import "github.com/google/uuid"

// New generates a new correlation identifier as a string.
func New() string {
	return uuid.New().String()
}
