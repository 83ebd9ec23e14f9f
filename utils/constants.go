package utils

import (
	"time"
)

type contextKey string

// Request-scoped context keys set by the HTTP layer
const (
	RequestIDKey contextKey = "request_id"
	UserAgentKey contextKey = "user_agent"
	IPAddressKey contextKey = "ip_address"
	EndpointKey  contextKey = "endpoint"
	TimeoutKey   contextKey = "timeout"
	StaffKey     contextKey = "staff_subject"
)

// Ticket code constants
const (
	// TicketIDPrefix precedes the numeric part of every ticket code
	TicketIDPrefix = "RPR"

	// TicketIDPadding is the minimum digit count of the numeric part
	TicketIDPadding = 3
)

// Reporting constants
const (
	// DefaultReportDays is the trailing window used when none is given
	DefaultReportDays = 30

	// RecentTicketsLimit is the number of tickets shown on the dashboard
	RecentTicketsLimit = 5

	// RequestTimeout bounds every API request context
	RequestTimeout = 30 * time.Second
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
