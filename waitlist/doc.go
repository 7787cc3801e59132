// Package waitlist implements the intrusive waiting lists used by blocking
// RTOS objects.
//
// # Overview
//
// A List keeps the nodes of waiting threads in descending priority order,
// first-in first-out among equal priorities. Nodes are owned by the waiter
// (usually on its own stack) and are only borrowed by the list while linked,
// so linking and unlinking never allocate.
//
// All mutations run inside the list's critical-section domain. WakeupOne
// pops the head inside the section and resumes the thread after leaving it.
//
// Deadlines is the companion list ordered by timestamp, used to expire
// timed waits.
package waitlist
