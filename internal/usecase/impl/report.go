package impl

import (
	"fmt"
	"sort"
	"strings"

	"profiler/internal/domain/entity"
)

// renderSummaryReport renders the aggregate text report used by both the
// live classifier and the offline extractor: counts by variant with
// percentages followed by a one-line digest per user, ordered by email
// for stable output.
func renderSummaryReport(title string, profiles []*entity.Profile) string {
	var b strings.Builder

	separator := strings.Repeat("=", 56)
	b.WriteString("\n" + separator + "\n")
	b.WriteString("  " + title + "\n")
	b.WriteString(separator + "\n\n")

	var readHeavy, writeHeavy, expensiveSeekers int
	for _, p := range profiles {
		switch p.Type {
		case entity.ProfileReadHeavy:
			readHeavy++
		case entity.ProfileWriteHeavy:
			writeHeavy++
		case entity.ProfileExpensiveSeeker:
			expensiveSeekers++
		}
	}

	total := len(profiles)
	fmt.Fprintf(&b, "Total Users: %d\n", total)
	fmt.Fprintf(&b, "  - %s: %d%s\n", entity.ProfileReadHeavy, readHeavy, shareOf(readHeavy, total))
	fmt.Fprintf(&b, "  - %s: %d%s\n", entity.ProfileWriteHeavy, writeHeavy, shareOf(writeHeavy, total))
	fmt.Fprintf(&b, "  - %s: %d%s\n\n", entity.ProfileExpensiveSeeker, expensiveSeekers, shareOf(expensiveSeekers, total))

	ordered := make([]*entity.Profile, len(profiles))
	copy(ordered, profiles)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].UserEmail < ordered[j].UserEmail
	})

	for _, p := range ordered {
		fmt.Fprintf(&b, "User: %s <%s>\n", p.UserName, p.UserEmail)
		fmt.Fprintf(&b, "  Profile: %s\n", p.Type)
		fmt.Fprintf(&b, "  Description: %s\n", p.Description())
		fmt.Fprintf(&b, "  Total Operations: %d\n", p.TotalOperations)
		fmt.Fprintf(&b, "  Period: %s to %s\n\n",
			p.CreatedAt.Format("2006-01-02 15:04:05"),
			p.LastActivityAt.Format("2006-01-02 15:04:05"))
	}

	return b.String()
}

func shareOf(n, total int) string {
	if total == 0 {
		return ""
	}

	return fmt.Sprintf(" (%.1f%%)", float64(n)*100.0/float64(total))
}
