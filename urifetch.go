// Package urifetch retrieves and manipulates resources identified by URIs
// through pluggable, scheme-selected clients. The http scheme is served by
// a hand-written HTTP/1.1 engine; the file scheme by a thin os wrapper.
package urifetch

import (
	"context"
	"log/slog"

	httpclient "urifetch/http/client"
	"urifetch/resource"
	"urifetch/resource/file"
	"urifetch/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// RegisterDefaultClients populates the default registry with the built-in
// http and file clients. Call it once at program startup.
func RegisterDefaultClients(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	httpFactory := httpclient.Factory(tcp.NewDialer(), logger, clock.New())
	if err := resource.Register(httpclient.Scheme, httpFactory); err != nil {
		return errors.Wrap(err, "registering http client")
	}

	if err := resource.Register(file.Scheme, file.Factory()); err != nil {
		return errors.Wrap(err, "registering file client")
	}

	return nil
}

// Open opens rawuri through the default registry.
func Open(ctx context.Context, rawuri string, opts resource.Options) (*resource.Resource, error) {
	return resource.Open(ctx, rawuri, opts)
}
