package businessflow

import (
	"strings"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
)

func isWildcard(v string) bool {
	return v == "" || strings.EqualFold(v, "all")
}

// FilterTickets applies the ticket list search box and the status/priority selectors.
// The search is a case-insensitive substring match on id, customer name, device type and model.
func FilterTickets(tickets []models.RepairTicket, query dto.ListTicketsQuery) []models.RepairTicket {
	term := strings.ToLower(strings.TrimSpace(query.Search))
	out := make([]models.RepairTicket, 0, len(tickets))
	for _, t := range tickets {
		if term != "" &&
			!strings.Contains(strings.ToLower(t.ID), term) &&
			!strings.Contains(strings.ToLower(t.CustomerName), term) &&
			!strings.Contains(strings.ToLower(t.DeviceType), term) &&
			!strings.Contains(strings.ToLower(t.DeviceModel), term) {
			continue
		}
		if !isWildcard(query.Status) && string(t.Status) != query.Status {
			continue
		}
		if !isWildcard(query.Priority) && string(t.Priority) != query.Priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterCustomers matches name and email case-insensitively and phone as typed
func FilterCustomers(customers []models.Customer, search string) []models.Customer {
	raw := strings.TrimSpace(search)
	term := strings.ToLower(raw)
	out := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if term == "" ||
			strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Email), term) ||
			strings.Contains(c.Phone, raw) {
			out = append(out, c)
		}
	}
	return out
}
