package memory

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats is a snapshot of a resource's usage counters.
type Stats struct {
	TotalBytes        int `json:"total_bytes"`
	AllocatedBytes    int `json:"allocated_bytes"`
	MaxAllocatedBytes int `json:"max_allocated_bytes"`
	FreeBytes         int `json:"free_bytes"`
	AllocatedChunks   int `json:"allocated_chunks"`
	FreeChunks        int `json:"free_chunks"`
}

// fresh returns the counters of an empty resource managing total bytes in
// freeChunks chunks.
func fresh(total, freeChunks int) Stats {
	return Stats{TotalBytes: total, FreeBytes: total, FreeChunks: freeChunks}
}

// increase accounts for one chunk of n bytes moving from free to allocated.
func (s *Stats) increase(n int) {
	s.AllocatedBytes += n
	s.AllocatedChunks++
	s.FreeBytes -= n
	s.FreeChunks--
	if s.AllocatedBytes > s.MaxAllocatedBytes {
		s.MaxAllocatedBytes = s.AllocatedBytes
	}
}

// decrease accounts for one chunk of n bytes moving from allocated to free.
func (s *Stats) decrease(n int) {
	s.AllocatedBytes -= n
	s.AllocatedChunks--
	s.FreeBytes += n
	s.FreeChunks++
}

func (s Stats) String() string {
	return fmt.Sprintf("total %s, allocated %s in %d chunks (max %s), free %s in %d chunks",
		humanize.IBytes(uint64(s.TotalBytes)),
		humanize.IBytes(uint64(s.AllocatedBytes)), s.AllocatedChunks,
		humanize.IBytes(uint64(s.MaxAllocatedBytes)),
		humanize.IBytes(uint64(max(s.FreeBytes, 0))), s.FreeChunks)
}

// Report writes a localized table of the counters to w.
func (s Stats) Report(w io.Writer, name string, tag language.Tag) error {
	p := message.NewPrinter(tag)
	rows := []struct {
		label string
		value int
	}{
		{"total bytes", s.TotalBytes},
		{"allocated bytes", s.AllocatedBytes},
		{"max allocated bytes", s.MaxAllocatedBytes},
		{"free bytes", s.FreeBytes},
		{"allocated chunks", s.AllocatedChunks},
		{"free chunks", s.FreeChunks},
	}
	if _, err := p.Fprintf(w, "%s\n", name); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := p.Fprintf(w, "  %-20s %12d\n", r.label, r.value); err != nil {
			return err
		}
	}
	return nil
}
