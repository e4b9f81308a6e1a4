package task

import (
	"fmt"
	"strings"
)

// updateDetails builds the human-readable summary for an UPDATED activity
// from the field names present in the patch, in request order. The
// bookkeeping fields never count as changes of their own.
func updateDetails(fields []string) string {
	changed := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "updatedAt" || f == "activities" {
			continue
		}
		changed = append(changed, f)
	}
	if len(changed) == 0 {
		return "Task updated"
	}
	return "Updated " + strings.Join(changed, ", ")
}

func statusDetails(from, to string) string {
	return fmt.Sprintf("Status changed from %s to %s", from, to)
}
