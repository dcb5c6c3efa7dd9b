// Package errors provides coded, actionable errors for the hallocord CLI
// and client.
//
// Each error has a code (e.g., "H001") that maps to a category, a short
// message, a longer explanation, an optional hint and a documentation URL.
// Codes are grouped by range:
//   - H001-H009: credentials and connection admission
//   - H010-H039: gateway protocol outcomes
//   - H120-H149: configuration
//
// # Usage
//
//	if token == "" {
//	    return errors.New("H001")
//	}
//
//	errors.PrintError(os.Stderr, err)
//	// ERROR H001: Empty token
//	//
//	//   Authorize was called without a token. ...
//	//
//	//   Hint: Set HALLOCORD_TOKEN or pass --token.
//	//
//	//   Learn more: https://hallocord.dev/docs/errors/H001
//
// Coded errors compare by code with errors.Is, so callers can test for a
// condition without holding the original value.
package errors
