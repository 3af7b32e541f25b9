package grpc

import (
	"context"
	"strings"

	apperrors "github.com/openpreview/preprint.review/internal/platform/errors"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// localeMetadataKey carries the caller's preferred locale for error messages.
const localeMetadataKey = "accept-language"

// UnaryErrorInterceptor converts domain errors returned by handlers into
// gRPC statuses with localized user messages. Errors that already carry a
// gRPC status pass through untouched.
func UnaryErrorInterceptor() gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := status.FromError(err); ok {
			return resp, err
		}
		return resp, apperrors.HandleError(err, LocaleFromContext(ctx))
	}
}

// LocaleFromContext reads the caller locale from incoming metadata. It
// returns the first language tag of the accept-language value, or empty
// when the caller sent none.
func LocaleFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(localeMetadataKey)
	if len(values) == 0 {
		return ""
	}
	tag, _, _ := strings.Cut(values[0], ",")
	return strings.TrimSpace(tag)
}
