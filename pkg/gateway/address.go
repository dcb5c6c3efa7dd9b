package gateway

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

const (
	// DefaultGatewayURL is the public gateway base address.
	DefaultGatewayURL = "wss://gateway.discord.gg"

	// DefaultVersion is the gateway API version requested by default.
	DefaultVersion = 10

	// DefaultEncoding is the only payload encoding the client speaks.
	DefaultEncoding = "json"
)

// ErrInvalidAddress is returned for gateway addresses that cannot be dialed.
var ErrInvalidAddress = errors.New("gateway: invalid address")

// AddressOptions are the query parameters appended by BuildAddress.
type AddressOptions struct {
	Version  int
	Encoding string
}

// BuildAddress turns a gateway base URL into a dialable address carrying
// the version and encoding query parameters. http and https are mapped to
// ws and wss.
func BuildAddress(base string, opts AddressOptions) (string, error) {
	if base == "" {
		base = DefaultGatewayURL
	}
	if opts.Version == 0 {
		opts.Version = DefaultVersion
	}
	if opts.Encoding == "" {
		opts.Encoding = DefaultEncoding
	}
	if opts.Version != 9 && opts.Version != 10 {
		return "", fmt.Errorf("%w: unsupported version %d", ErrInvalidAddress, opts.Version)
	}
	if opts.Encoding != DefaultEncoding {
		return "", fmt.Errorf("%w: unsupported encoding %q", ErrInvalidAddress, opts.Encoding)
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidAddress)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	q := u.Query()
	q.Set("v", strconv.Itoa(opts.Version))
	q.Set("encoding", opts.Encoding)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
