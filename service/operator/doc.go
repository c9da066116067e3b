// SPDX-License-Identifier: BSD-3-Clause

// Package operator provides the top-level service orchestrator. It acts as
// the root of a two-child supervision tree: the embedded event bus and the
// device lifecycle supervisor. Either child restarts independently on
// crash; the operator itself never gives up as long as ctx is live.
//
//	op := operator.New(
//		operator.WithName("powersupd"),
//		operator.WithEventBus(),
//		operator.WithSupervisor(supervisor.WithAdapters(adapters)),
//	)
//	if err := op.Run(ctx, nil); err != nil {
//		log.Fatal(err)
//	}
//
// A caller that already has an in-process NATS connection (e.g. it is
// embedding this module alongside other NATS-backed services) can pass it
// as busConn to Run instead of configuring WithEventBus, and the operator
// will dial into it rather than starting its own.
package operator
