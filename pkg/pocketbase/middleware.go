package pocketbase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

// Handler performs an exchange for a request descriptor.
type Handler func(ctx context.Context, req *Request) (*Response, error)

// Middleware transforms a pending exchange. It may modify the request,
// short-circuit with an error, delegate to next and inspect the response.
type Middleware interface {
	Handle(ctx context.Context, req *Request, next Handler) (*Response, error)
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc func(ctx context.Context, req *Request, next Handler) (*Response, error)

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, req *Request, next Handler) (*Response, error) {
	return f(ctx, req, next)
}

// Chain is an ordered list of middlewares. The first middleware sees the
// request first and the response last.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a chain in the given order. Nil entries are skipped.
func NewChain(middlewares ...Middleware) *Chain {
	chain := &Chain{middlewares: make([]Middleware, 0, len(middlewares))}

	for _, mw := range middlewares {
		if mw != nil {
			chain.middlewares = append(chain.middlewares, mw)
		}
	}

	return chain
}

// Len returns the number of middlewares.
func (c *Chain) Len() int {
	return len(c.middlewares)
}

// Then composes the chain around terminal.
func (c *Chain) Then(terminal Handler) Handler {
	handler := terminal

	for i := len(c.middlewares) - 1; i >= 0; i-- {
		mw := c.middlewares[i]
		next := handler
		handler = func(ctx context.Context, req *Request) (*Response, error) {
			return mw.Handle(ctx, req, next)
		}
	}

	return handler
}

// Execute runs a clone of req through the chain and terminal.
func (c *Chain) Execute(ctx context.Context, req *Request, terminal Handler) (*Response, error) {
	return c.Then(terminal)(ctx, req.Clone())
}

// Common middlewares

// BaseURLResolver rewrites the relative request path into an absolute URL.
func BaseURLResolver(cctx *ClientContext) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Handler) (*Response, error) {
		resolved, err := cctx.ResolveURL(req.Path)
		if err != nil {
			return nil, err
		}

		req.URL = resolved

		return next(ctx, req)
	})
}

// LocaleInjector sets Accept-Language from the context locale.
func LocaleInjector(cctx *ClientContext) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Handler) (*Response, error) {
		if locale := cctx.Locale(); locale != "" {
			req.Headers.Set(constants.HeaderAcceptLanguage, locale)
		}

		return next(ctx, req)
	})
}

// AuthInjector attaches the active credential as a bearer token. Requests
// marked RequiresAuth fail with ErrUnauthenticated when no credential is set.
func AuthInjector(cctx *ClientContext) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Handler) (*Response, error) {
		cred, ok := cctx.Credential()
		if !ok {
			if req.RequiresAuth {
				return nil, fmt.Errorf("%w: %s %s requires a credential", ErrUnauthenticated, req.Method, req.Path)
			}

			return next(ctx, req)
		}

		req.Headers.Set(constants.HeaderAuthorization, constants.BearerPrefix+cred.Token)

		return next(ctx, req)
	})
}

// HeaderMiddleware sets static headers on every request.
func HeaderMiddleware(headers map[string]string) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Handler) (*Response, error) {
		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return next(ctx, req)
	})
}

// LoggingMiddleware logs requests and responses.
func LoggingMiddleware(logger Logger) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Handler) (*Response, error) {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"url":    req.FullURL(),
		})

		start := time.Now()
		resp, err := next(ctx, req)

		fields := map[string]interface{}{
			"method":      req.Method,
			"url":         req.FullURL(),
			"duration_ms": time.Since(start).Milliseconds(),
		}

		if resp != nil {
			fields["status_code"] = resp.StatusCode
		}

		if err != nil {
			fields["error"] = err.Error()
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return resp, err
	})
}

// RateLimitMiddleware waits on limiter before each request. Cancellation
// while waiting is reported as a TransportError.
func RateLimitMiddleware(limiter *rate.Limiter) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Handler) (*Response, error) {
		err := limiter.Wait(ctx)
		if err != nil {
			return nil, &TransportError{Op: "rate limit wait", URL: req.URL, Err: err}
		}

		return next(ctx, req)
	})
}

// NewRateLimitMiddleware limits requests to requestsPerSecond with the given burst.
func NewRateLimitMiddleware(requestsPerSecond float64, burst int) Middleware {
	if burst < 1 {
		burst = 1
	}

	return RateLimitMiddleware(rate.NewLimiter(rate.Limit(requestsPerSecond), burst))
}
