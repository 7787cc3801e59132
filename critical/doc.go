// Package critical provides the two critical-section domains the memory
// resources and waiting lists run under.
//
// # Overview
//
// On a single-core RTOS a critical section is entered either by masking
// interrupts or by locking the scheduler. Here each of those is a Domain:
// a reentrant owner lock keyed by goroutine, so a goroutine standing in for
// a thread or an interrupt handler can nest sections freely while every
// other goroutine waits at the door.
//
// # Usage
//
//	cs := critical.Scheduler.Enter()
//	defer cs.Exit()
//
// The raw pair mirrors the classic disable/restore idiom:
//
//	st := critical.Interrupts.Disable()
//	// ...
//	critical.Interrupts.Restore(st)
//
// Restoring always returns the domain to exactly the recorded prior state,
// which is what makes nesting safe.
//
// # Choosing a domain
//
// Objects that may be touched from interrupt handlers must use Interrupts.
// Objects only touched by threads may use the cheaper Scheduler domain. The
// choice is made once, when the object is constructed.
package critical
