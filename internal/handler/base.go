package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/rzcleanseal/leads-api/internal/middleware"
	"github.com/rzcleanseal/leads-api/internal/server"
	"github.com/rzcleanseal/leads-api/internal/validation"
)

// Handler holds the shared dependencies. Concrete handlers embed it to
// reach config, logger and the store handle.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint receiving a bound, validated payload.
// Req is a pointer type, e.g. *model.Lead.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// NoInputFunc is a typed endpoint that reads nothing from the request.
type NoInputFunc[Res any] func(c echo.Context) (Res, error)

// ResponseHandler writes a successful result and reports it to tracing.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if counted, ok := result.(interface{ ResultCount() int }); ok {
		txn.AddAttribute("result.count", counted.ResultCount())
	}
}

// pipeline carries one request through the optional input step, the
// endpoint and the response writer, logging and tracing each phase.
type pipeline struct {
	c     echo.Context
	txn   *newrelic.Transaction
	log   zerolog.Logger
	start time.Time
}

func newPipeline(c echo.Context, responseHandler ResponseHandler) *pipeline {
	path := c.Path()

	// Set by the nrecho middleware.
	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", path)
	}

	log := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", c.Request().Method).
		Str("path", path).
		Logger()

	log.Info().Msg("handling request")

	return &pipeline{c: c, txn: txn, log: log, start: time.Now()}
}

func (p *pipeline) attr(key string, value interface{}) {
	if p.txn != nil {
		p.txn.AddAttribute(key, value)
	}
}

// bind binds and validates req. The returned error is already an
// *errs.HTTPError for the global error handler.
func (p *pipeline) bind(req validation.Validatable) error {
	began := time.Now()
	err := validation.BindAndValidate(p.c, req)
	took := time.Since(began)
	p.attr("validation.duration_ms", took.Milliseconds())

	if err != nil {
		p.log.Error().Err(err).Dur("validation_duration", took).Msg("request validation failed")
		if p.txn != nil {
			p.txn.NoticeError(nrpkgerrors.Wrap(err))
		}
		p.attr("validation.status", "failed")
		return err
	}

	p.attr("validation.status", "success")
	p.log.Debug().Dur("validation_duration", took).Msg("request validation successful")
	return nil
}

func (p *pipeline) run(fn func() (interface{}, error), responseHandler ResponseHandler) error {
	began := time.Now()
	result, err := fn()
	took := time.Since(began)
	total := time.Since(p.start)

	p.attr("handler.duration_ms", took.Milliseconds())
	p.attr("total.duration_ms", total.Milliseconds())

	if err != nil {
		p.log.Error().
			Err(err).
			Dur("handler_duration", took).
			Dur("total_duration", total).
			Msg("handler execution failed")
		if p.txn != nil {
			p.txn.NoticeError(nrpkgerrors.Wrap(err))
		}
		p.attr("handler.status", "error")
		return err
	}

	p.attr("handler.status", "success")
	if p.txn != nil {
		responseHandler.AddAttributes(p.txn, result)
	}

	p.log.Info().
		Dur("handler_duration", took).
		Dur("total_duration", total).
		Msg("request completed successfully")

	return responseHandler.Handle(p.c, result)
}

// Handle returns an echo.HandlerFunc that binds a fresh payload from
// newReq, validates it, and runs handler:
//
//	router.POST("/x", handler.Handle(h.Handler, h.Create, http.StatusOK, model.NewThing))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	newReq func() Req,
) echo.HandlerFunc {
	responseHandler := JSONResponseHandler{status: status}

	return func(c echo.Context) error {
		p := newPipeline(c, responseHandler)

		req := newReq()
		if err := p.bind(req); err != nil {
			return err
		}

		return p.run(func() (interface{}, error) {
			return handler(c, req)
		}, responseHandler)
	}
}

// HandleNoInput is Handle for endpoints that take no input. The request
// body and query are never read, so they cannot fail the request.
func HandleNoInput[Res any](h Handler, handler NoInputFunc[Res], status int) echo.HandlerFunc {
	responseHandler := JSONResponseHandler{status: status}

	return func(c echo.Context) error {
		p := newPipeline(c, responseHandler)
		return p.run(func() (interface{}, error) {
			return handler(c)
		}, responseHandler)
	}
}
