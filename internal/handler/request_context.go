package handler

import (
	"context"
	"net/http"

	"google.golang.org/grpc/metadata"

	"github.com/ury-pos/pos-core/internal/service"
)

// Header and metadata names carrying the request context. gRPC metadata
// keys are the lower-cased header names.
const (
	HeaderSessionUser    = "X-Session-User"
	HeaderBranch         = "X-Branch"
	HeaderAcceptLanguage = "Accept-Language"
)

type requestContextKey struct{}

func withRequestContext(ctx context.Context, rc service.RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

func requestContextFrom(ctx context.Context) service.RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(service.RequestContext)
	return rc
}

func requestContextFromHeaders(h http.Header) service.RequestContext {
	return service.RequestContext{
		SessionUser: h.Get(HeaderSessionUser),
		Branch:      h.Get(HeaderBranch),
		Locale:      h.Get(HeaderAcceptLanguage),
	}
}

func requestContextFromMetadata(md metadata.MD) service.RequestContext {
	first := func(key string) string {
		if v := md.Get(key); len(v) > 0 {
			return v[0]
		}
		return ""
	}
	return service.RequestContext{
		SessionUser: first(HeaderSessionUser),
		Branch:      first(HeaderBranch),
		Locale:      first(HeaderAcceptLanguage),
	}
}
