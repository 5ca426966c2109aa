package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	csvcodec "cryptotrack/internal/adapters/csv"
	"cryptotrack/internal/adapters/logger"
	authService "cryptotrack/internal/application/auth"
	transactionService "cryptotrack/internal/application/transaction"
	"cryptotrack/internal/domain/alert"
	"cryptotrack/internal/domain/portfolio"
	"cryptotrack/internal/domain/transaction"
	"cryptotrack/internal/domain/user"
	httpports "cryptotrack/internal/ports/http"
)

// HandlerAdapter adapts application services to HTTP handlers
type HandlerAdapter struct {
	authService        httpports.AuthService
	transactionService httpports.TransactionService
	portfolioService   httpports.PortfolioService
	alertService       httpports.AlertService
	serviceName        string
	version            string
	logger             *logger.Logger
}

func NewHandlerAdapter(
	authService httpports.AuthService,
	transactionService httpports.TransactionService,
	portfolioService httpports.PortfolioService,
	alertService httpports.AlertService,
	serviceName string,
	version string,
	l *logger.Logger,
) *HandlerAdapter {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &HandlerAdapter{
		authService:        authService,
		transactionService: transactionService,
		portfolioService:   portfolioService,
		alertService:       alertService,
		serviceName:        serviceName,
		version:            version,
		logger:             l.Named("handlers"),
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, httpports.ErrorResponse{
		Error:   "Bad Request",
		Message: message,
	})
}

// fail maps service errors onto status codes. Unrecognised errors are logged
// and reported without detail.
func (h *HandlerAdapter) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, transaction.ErrInvalidTransaction),
		errors.Is(err, alert.ErrInvalidAlert),
		errors.Is(err, httpports.ErrMissingField),
		errors.Is(err, csvcodec.ErrMissingColumns),
		errors.Is(err, csvcodec.ErrInvalidValue),
		errors.Is(err, transactionService.ErrEmptyImport),
		errors.Is(err, authService.ErrWeakPassword),
		errors.Is(err, authService.ErrInvalidEmail):
		status = http.StatusBadRequest
	case errors.Is(err, user.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, transaction.ErrTransactionNotFound),
		errors.Is(err, alert.ErrAlertNotFound),
		errors.Is(err, user.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, user.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, portfolio.ErrOversell):
		status = http.StatusUnprocessableEntity
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.String("user_id", userID(c)),
			zap.Error(err),
		)
		message = "internal error"
	}

	return c.JSON(status, httpports.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *HandlerAdapter) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, httpports.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   h.serviceName,
		Version:   h.version,
	})
}

// Auth

func (h *HandlerAdapter) Register(c echo.Context) error {
	var req httpports.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	ctx := c.Request().Context()
	u, err := h.authService.Register(ctx, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	token, expiresAt, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusCreated, httpports.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      httpports.ToHTTPUser(u),
	})
}

func (h *HandlerAdapter) Login(c echo.Context) error {
	var req httpports.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	token, expiresAt, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, httpports.TokenResponse{Token: token, ExpiresAt: expiresAt})
}

func (h *HandlerAdapter) Me(c echo.Context) error {
	u, err := h.authService.GetUser(c.Request().Context(), userID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPUser(u))
}

// Transactions

func (h *HandlerAdapter) ListTransactions(c echo.Context) error {
	txs, err := h.transactionService.List(c.Request().Context(), userID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPTransactions(txs))
}

func (h *HandlerAdapter) GetTransaction(c echo.Context) error {
	t, err := h.transactionService.Get(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPTransaction(t))
}

func (h *HandlerAdapter) CreateTransaction(c echo.Context) error {
	var req httpports.TransactionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	t, err := httpports.ToDomainTransaction(req, userID(c))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.transactionService.Create(c.Request().Context(), t); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, httpports.ToHTTPTransaction(t))
}

func (h *HandlerAdapter) UpdateTransaction(c echo.Context) error {
	var req httpports.TransactionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	patch, err := httpports.ToDomainTransactionPatch(req)
	if err != nil {
		return h.fail(c, err)
	}
	t, err := h.transactionService.Update(c.Request().Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPTransaction(t))
}

func (h *HandlerAdapter) DeleteTransaction(c echo.Context) error {
	if err := h.transactionService.Delete(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ImportTransactions accepts either a raw text/csv body or {"csv": "..."}.
func (h *HandlerAdapter) ImportTransactions(c echo.Context) error {
	var body io.Reader
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), "text/csv") {
		body = c.Request().Body
	} else {
		var req httpports.ImportRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		body = strings.NewReader(req.CSV)
	}

	n, err := h.transactionService.Import(c.Request().Context(), userID(c), body)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, httpports.ImportResponse{Imported: n})
}

func (h *HandlerAdapter) ExportTransactions(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="transactions.csv"`)

	// buffer so a failure can still produce a JSON error
	var buf strings.Builder
	if err := h.transactionService.Export(c.Request().Context(), userID(c), &buf); err != nil {
		res.Header().Del(echo.HeaderContentDisposition)
		return h.fail(c, err)
	}
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(buf.String()))
}

// Portfolio

func (h *HandlerAdapter) GetPortfolio(c echo.Context) error {
	v, err := h.portfolioService.GetMetrics(c.Request().Context(), userID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPPortfolio(v))
}

// Alerts

func (h *HandlerAdapter) ListAlerts(c echo.Context) error {
	alerts, err := h.alertService.List(c.Request().Context(), userID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPAlerts(alerts))
}

func (h *HandlerAdapter) GetAlert(c echo.Context) error {
	a, err := h.alertService.Get(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPAlert(a))
}

func (h *HandlerAdapter) CreateAlert(c echo.Context) error {
	var req httpports.AlertRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	a, err := httpports.ToDomainAlert(req, userID(c))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.alertService.Create(c.Request().Context(), a); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, httpports.ToHTTPAlert(a))
}

func (h *HandlerAdapter) UpdateAlert(c echo.Context) error {
	var req httpports.AlertRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	a, err := h.alertService.Update(c.Request().Context(), userID(c), c.Param("id"), httpports.ToDomainAlertPatch(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, httpports.ToHTTPAlert(a))
}

func (h *HandlerAdapter) DeleteAlert(c echo.Context) error {
	if err := h.alertService.Delete(c.Request().Context(), userID(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
