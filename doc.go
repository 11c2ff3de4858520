// Package procman provides the process management core of a small kernel:
// a bounded process table and the dispatch controller that records which
// process runs next on a scheduling domain.
//
// The package is organised in layers:
//
//   - runtime/table     – process table and dispatch state of one domain
//   - service/factory   – process construction and identifier issuing
//   - service/scheduler – selection policies (round-robin, priority)
//   - service/event     – non-blocking lifecycle notifications
//   - service/dao       – snapshot persistence (memory, afs)
//
// Embedders use the Service facade exposed by the root package:
//
//	srv, _ := procman.New(procman.WithConfig(cfg))
//	cpu, _ := srv.Domain("cpu0")
//	a, _ := cpu.Create(ctx, 0x1000)
//	cpu.Schedule(ctx, a)
//
// Fatal conditions (a stale dispatch target, nothing to run without an idle
// process, a factory breaking its contract) are not errors: they are handed
// to the halt handler, which panics by default.
package procman
