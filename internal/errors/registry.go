package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

const docBase = "https://hallocord.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Credential and Connection Errors (H001-H019)
	// ============================================

	"H001": {
		Category:   CategoryCredential,
		Message:    "Empty token",
		Detail:     "Authorize was called without a token. The token is sent in the Identify payload and cannot be empty.",
		Suggestion: "Set HALLOCORD_TOKEN or pass --token.",
		DocURL:     docBase + "H001",
	},
	"H002": {
		Category:   CategoryConnection,
		Message:    "Missing gateway address",
		Detail:     "Connect was called without an address to dial.",
		Suggestion: "Use Login to build the default address, or pass a ws:// or wss:// URL.",
		DocURL:     docBase + "H002",
	},
	"H003": {
		Category: CategoryConnection,
		Message:  "Connection already active",
		Detail:   "A client owns at most one gateway connection. Close the current one before connecting again.",
		DocURL:   docBase + "H003",
	},
	"H004": {
		Category: CategoryConnection,
		Message:  "Client closed",
		Detail:   "The client has been closed and can no longer process gateway traffic.",
		DocURL:   docBase + "H004",
	},

	// ============================================
	// Protocol Errors (H010-H039)
	// ============================================

	"H010": {
		Category:   CategoryProtocol,
		Message:    "Authentication failed",
		Detail:     "The gateway closed the connection with code 4004. The token was rejected and retrying with it will fail again.",
		Suggestion: "Regenerate the bot token and update HALLOCORD_TOKEN.",
		DocURL:     docBase + "H010",
	},
	"H011": {
		Category: CategoryProtocol,
		Message:  "Gateway closed the connection",
		Detail:   "The gateway closed the connection with a code that cannot be fixed by reconnecting with the same options.",
		DocURL:   docBase + "H011",
	},
	"H020": {
		Category:   CategoryProtocol,
		Message:    "Unknown intent",
		Detail:     "An intent name did not match any gateway intent.",
		Suggestion: "Run `hallocord intents` to list the known names.",
		DocURL:     docBase + "H020",
	},

	// ============================================
	// Configuration Errors (H120-H149)
	// ============================================

	"H120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "hallocord.json could not be parsed.",
		DocURL:   docBase + "H120",
	},
	"H122": {
		Category: CategoryConfig,
		Message:  "Invalid gateway settings",
		Detail:   "The gateway version must be 9 or 10 and the encoding must be json.",
		DocURL:   docBase + "H122",
	},
	"H123": {
		Category: CategoryConfig,
		Message:  "Invalid log settings",
		Detail:   "log.level must be one of debug, info, warn, error and log.format one of text, json.",
		DocURL:   docBase + "H123",
	},
	"H124": {
		Category: CategoryConfig,
		Message:  "Invalid metrics settings",
		Detail:   "metrics.address must be a host:port pair when metrics are enabled.",
		DocURL:   docBase + "H124",
	},
	"H141": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "No hallocord.json was found.",
		Suggestion: "Run 'hallocord init' to write a default configuration.",
		DocURL:     docBase + "H141",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
