package memory

import (
	"testing"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/critical"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"
)

// alignedArena returns n bytes starting on a 64-byte boundary, so offsets
// computed in tests match the allocator's arena offsets.
func alignedArena(t testing.TB, n int) []byte {
	t.Helper()
	buf := make([]byte, n+64)
	addr := addrOf(buf)
	off := int(format.AlignAddr(addr, 64) - addr)
	return buf[off : off+n : off+n]
}

// offset returns p's distance from the start of arena.
func offset(arena, p []byte) int {
	return int(addrOf(p) - addrOf(arena))
}

// testDomain isolates a resource from the process-wide domains.
func testDomain() Option {
	return WithDomain(critical.NewDomain(critical.KindScheduler))
}
