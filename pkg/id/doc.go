// SPDX-License-Identifier: BSD-3-Clause

// Package id generates ephemeral correlation identifiers. Nothing here is
// persisted: the IDs it hands out (service/operator uses one as its per-run
// ID) are gone once the process exits.
package id
