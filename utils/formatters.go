package utils

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders amount as US dollars, e.g. $1,234.50
func FormatCurrency(amount float64) string {
	if amount < 0 {
		return "-$" + usPrinter.Sprintf("%.2f", -amount)
	}
	return "$" + usPrinter.Sprintf("%.2f", amount)
}

// FormatDate renders t like "Jan 15, 2024, 02:30 PM"
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006, 03:04 PM")
}

// FormatDateShort renders t like "Jan 15"
func FormatDateShort(t time.Time) string {
	return t.Format("Jan 2")
}

const defaultTag = "bg-gray-100 text-gray-800"

var statusTags = map[string]string{
	"received":         "bg-blue-100 text-blue-800",
	"diagnosed":        "bg-purple-100 text-purple-800",
	"in_progress":      "bg-yellow-100 text-yellow-800",
	"awaiting_parts":   "bg-orange-100 text-orange-800",
	"testing":          "bg-indigo-100 text-indigo-800",
	"completed":        "bg-green-100 text-green-800",
	"ready_for_pickup": "bg-emerald-100 text-emerald-800",
	"picked_up":        "bg-gray-100 text-gray-800",
	"cancelled":        "bg-red-100 text-red-800",
}

var priorityTags = map[string]string{
	"low":    "bg-gray-100 text-gray-700",
	"medium": "bg-blue-100 text-blue-700",
	"high":   "bg-amber-100 text-amber-700",
	"urgent": "bg-red-100 text-red-700",
}

var gradeTags = map[string]string{
	"excellent": "bg-green-100 text-green-800",
	"good":      "bg-blue-100 text-blue-800",
	"fair":      "bg-yellow-100 text-yellow-800",
	"poor":      "bg-orange-100 text-orange-800",
	"damaged":   "bg-red-100 text-red-800",
}

// StatusColor maps a ticket status to its style tag
func StatusColor(status string) string {
	if tag, ok := statusTags[status]; ok {
		return tag
	}
	return defaultTag
}

func PriorityColor(priority string) string {
	if tag, ok := priorityTags[priority]; ok {
		return tag
	}
	return "bg-gray-100 text-gray-700"
}

func GradeColor(grade string) string {
	if tag, ok := gradeTags[grade]; ok {
		return tag
	}
	return defaultTag
}

// WorkloadColor maps an active ticket count to its style tag
func WorkloadColor(count int) string {
	switch {
	case count == 0:
		return "text-gray-500 bg-gray-50"
	case count <= 2:
		return "text-green-700 bg-green-50"
	case count <= 4:
		return "text-yellow-700 bg-yellow-50"
	default:
		return "text-red-700 bg-red-50"
	}
}
