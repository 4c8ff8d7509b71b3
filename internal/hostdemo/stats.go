package hostdemo

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
)

// FormatStats renders the demo's /stats endpoint body: per-handler
// invocation counts and total bytes transferred, human-formatted.
func FormatStats(counts map[string]int64, bytesTransferred int64, now time.Time) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	ts := strftime.Format("%Y-%m-%d %H:%M:%S", now)

	out := fmt.Sprintf("flowd stats at %s\n", ts)
	out += fmt.Sprintf("bytes transferred: %s\n", humanize.Bytes(uint64(bytesTransferred)))
	for _, name := range names {
		out += fmt.Sprintf("  %s: %s invocation(s)\n", name, humanize.Comma(counts[name]))
	}
	return out
}
