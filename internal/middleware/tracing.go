package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/rzcleanseal/leads-api/internal/server"
)

// TracingMiddleware installs New Relic transactions and decorates them
// with request and store attributes. nrApp is nil when New Relic is off,
// in which case both middlewares pass requests straight through.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware starts a transaction per request so that
// newrelic.FromContext works further down the chain.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing attaches requestAttributes to the transaction, notices
// the handler error with its stack and records the final status.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			for key, value := range tm.requestAttributes(c) {
				txn.AddAttribute(key, value)
			}

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}
			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}

// requestAttributes are the custom attributes known before the handler
// runs. Filter values are reported as flags, never verbatim.
func (tm *TracingMiddleware) requestAttributes(c echo.Context) map[string]any {
	attrs := map[string]any{
		"http.real_ip":        c.RealIP(),
		"http.user_agent":     c.Request().UserAgent(),
		"service.environment": tm.server.Config.Primary.Env,
		"store.state":         tm.server.DB.State().String(),
	}

	if id := GetRequestID(c); id != "" {
		attrs["request.id"] = id
	}

	query := c.Request().URL.Query()
	for _, param := range []string{"email", "tipo", "limit"} {
		if query.Has(param) {
			attrs["query."+param+"_set"] = true
		}
	}

	return attrs
}
