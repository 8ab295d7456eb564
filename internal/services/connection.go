package services

import (
	"net/url"
	"strings"

	"github.com/damacus/ironshelf/internal/errs"
)

// DefaultRegion is used when a connection does not name one.
const DefaultRegion = "us-east-1"

// Connection is what the user types on the connect form.
type Connection struct {
	Endpoint  string `json:"endpoint" validate:"required"`
	AccessKey string `json:"accessKey" validate:"required"`
	SecretKey string `json:"secretKey" validate:"required"`
	Region    string `json:"region"`
	PathStyle bool   `json:"pathStyle"`
}

// RegionOrDefault returns the configured region or DefaultRegion.
func (c Connection) RegionOrDefault() string {
	if c.Region == "" {
		return DefaultRegion
	}
	return c.Region
}

// endpoint is a Connection endpoint split into what the SDKs expect.
type endpoint struct {
	// Host is host[:port] without scheme, as minio-go wants it.
	Host   string
	Secure bool
}

// URL is the base URL the AWS SDK wants.
func (e endpoint) URL() string {
	if e.Secure {
		return "https://" + e.Host
	}
	return "http://" + e.Host
}

// parseEndpoint accepts "host", "host:port" or a full http(s) URL.
// Without a scheme TLS is decided by shouldUseSSL.
func parseEndpoint(raw string) (endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return endpoint{}, errs.New(errs.KindInvalidInput, "endpoint is required")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return endpoint{}, errs.Wrap(errs.KindInvalidInput, "invalid endpoint URL", err)
		}
		switch u.Scheme {
		case "http", "https":
		default:
			return endpoint{}, errs.Newf(errs.KindInvalidInput, "unsupported endpoint scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return endpoint{}, errs.New(errs.KindInvalidInput, "endpoint URL has no host")
		}
		if u.Path != "" && u.Path != "/" {
			return endpoint{}, errs.New(errs.KindInvalidInput, "endpoint URL must not contain a path")
		}
		return endpoint{Host: u.Host, Secure: u.Scheme == "https"}, nil
	}

	host := strings.TrimSuffix(raw, "/")
	if strings.Contains(host, "/") {
		return endpoint{}, errs.New(errs.KindInvalidInput, "endpoint must not contain a path")
	}
	return endpoint{Host: host, Secure: shouldUseSSL(host)}, nil
}

// shouldUseSSL determines if SSL should be used based on the endpoint.
// Returns false for loopback hosts and docker service names on port 9000.
func shouldUseSSL(endpoint string) bool {
	hostname := strings.Split(endpoint, ":")[0]
	if hostname == "localhost" || hostname == "127.0.0.1" {
		return false
	}
	// Docker service names (minio:9000, minio1:9000, ...). Only simple
	// hostnames without dots, not domain names like minio.example.com.
	if strings.HasPrefix(endpoint, "minio") && !strings.Contains(hostname, ".") && strings.HasSuffix(endpoint, ":9000") {
		return false
	}
	return true
}
