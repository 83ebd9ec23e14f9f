package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/amirphl/repair-desk/utils"
)

// FormatTicketID renders n as a ticket code, RPR-007 for 7. Widens past 999.
func FormatTicketID(n int64) string {
	return fmt.Sprintf("%s-%0*d", utils.TicketIDPrefix, utils.TicketIDPadding, n)
}

// ParseTicketNumber extracts the numeric suffix of a ticket code
func ParseTicketNumber(id string) (int64, bool) {
	_, suffix, ok := strings.Cut(id, "-")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextTicketID returns the code following lastID. An empty or unparseable
// lastID starts the sequence at 1.
func NextTicketID(lastID string) string {
	n, ok := ParseTicketNumber(lastID)
	if !ok {
		return FormatTicketID(1)
	}
	return FormatTicketID(n + 1)
}
