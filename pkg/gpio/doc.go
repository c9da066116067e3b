// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

// Package gpio wraps github.com/warthog618/go-gpiocdev with the
// functional-options configuration pattern used elsewhere in this codebase,
// and offers Adapters as a ready-made source of the two host-supplied
// boolean readings the supervisor needs: the power button line and the
// charger-present line.
package gpio
