package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirphl/debt-collection-crm/app/dto"
	"github.com/amirphl/debt-collection-crm/app/middleware"
	"github.com/amirphl/debt-collection-crm/app/services"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportFlow struct {
	businessflow.ReportFlow
	dashboardErr error
	gotUserID    uint
}

func (f *fakeReportFlow) Dashboard(ctx context.Context, userID uint) (*dto.DashboardResponse, error) {
	f.gotUserID = userID
	if f.dashboardErr != nil {
		return nil, f.dashboardErr
	}
	return &dto.DashboardResponse{DebtorsCount: 3, TotalDebt: decimal.NewFromInt(1500)}, nil
}

type fakeCommunicationFlow struct {
	businessflow.CommunicationFlow
	err    error
	gotReq *dto.SendSMSRequest
}

func (f *fakeCommunicationFlow) SendSMS(ctx context.Context, userID uint, req *dto.SendSMSRequest) (*dto.SendResult, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SendResult{Channel: "sms", Recipient: req.To, Status: "sent"}, nil
}

type fakeExportFlow struct {
	businessflow.ExportFlow
	gotFormat string
}

func (f *fakeExportFlow) ExportDebtors(ctx context.Context, userID uint, req *dto.ExportRequest) (*dto.ExportFile, error) {
	f.gotFormat = req.Format
	return &dto.ExportFile{FileName: "debtors.csv", ContentType: "text/csv", Content: []byte("Name\nJane\n"), Rows: 1}, nil
}

// newTestApp mounts routes behind a stub that authenticates as userID; 0 leaves the request anonymous
func newTestApp(userID uint, mount func(app *fiber.App)) *fiber.App {
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		if userID != 0 {
			c.Locals(middleware.LocalUserID, userID)
		}
		return c.Next()
	})
	mount(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, dto.APIResponse) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out dto.APIResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return resp, out
}

func errorCode(t *testing.T, resp dto.APIResponse) string {
	t.Helper()
	detail, ok := resp.Error.(map[string]any)
	require.True(t, ok, "error detail missing: %#v", resp.Error)
	code, _ := detail["code"].(string)
	return code
}

func TestReportHandler_Dashboard(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		flow := &fakeReportFlow{}
		app := newTestApp(7, func(app *fiber.App) {
			app.Get("/dashboard", NewReportHandler(flow).Dashboard)
		})

		resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.True(t, body.Success)
		assert.Equal(t, uint(7), flow.gotUserID)
		data := body.Data.(map[string]any)
		assert.EqualValues(t, 3, data["debtors_count"])
	})

	t.Run("anonymous", func(t *testing.T) {
		app := newTestApp(0, func(app *fiber.App) {
			app.Get("/dashboard", NewReportHandler(&fakeReportFlow{}).Dashboard)
		})

		resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "AUTHENTICATION_REQUIRED", errorCode(t, body))
	})
}

func TestHandleFlowError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", businessflow.ErrInvalidAmount, fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", businessflow.ErrDebtorNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"forbidden", businessflow.ErrAdminOnly, fiber.StatusForbidden, "FORBIDDEN"},
		{"unauthorized", businessflow.ErrAccountInactive, fiber.StatusUnauthorized, "ACCOUNT_INACTIVE"},
		{"conflict", businessflow.ErrEmailAlreadyExists, fiber.StatusBadRequest, "CONFLICT"},
		{"business code", businessflow.NewValidationError("BAD_PHONE", "phone is invalid"), fiber.StatusBadRequest, "BAD_PHONE"},
		{"provider missing", fmt.Errorf("sms: %w", services.ErrProviderNotConfigured), fiber.StatusServiceUnavailable, "PROVIDER_NOT_CONFIGURED"},
		{"upstream status", &services.UpstreamError{Service: "sms", StatusCode: 429, Body: "slow down"}, fiber.StatusTooManyRequests, "UPSTREAM_ERROR"},
		{"upstream unknown", &services.UpstreamError{Service: "sms"}, fiber.StatusBadGateway, "UPSTREAM_ERROR"},
		{"internal", fmt.Errorf("connection reset"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(1, func(app *fiber.App) {
				app.Get("/dashboard", NewReportHandler(&fakeReportFlow{dashboardErr: tc.err}).Dashboard)
			})
			resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.False(t, body.Success)
			assert.Equal(t, tc.code, errorCode(t, body))
		})
	}
}

func TestCommunicationHandler_SendSMS(t *testing.T) {
	mount := func(flow *fakeCommunicationFlow) *fiber.App {
		return newTestApp(2, func(app *fiber.App) {
			app.Post("/sms", NewCommunicationHandler(flow).SendSMS)
		})
	}
	post := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/sms", strings.NewReader(body))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		return req
	}

	t.Run("sent", func(t *testing.T) {
		flow := &fakeCommunicationFlow{}
		resp, body := doRequest(t, mount(flow), post(`{"to":"+254700000001","message":"Hello"}`))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, flow.gotReq)
		assert.Equal(t, "+254700000001", flow.gotReq.To)
		assert.Equal(t, "sent", body.Data.(map[string]any)["status"])
	})

	t.Run("malformed body", func(t *testing.T) {
		flow := &fakeCommunicationFlow{}
		resp, body := doRequest(t, mount(flow), post(`{"to":`))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_REQUEST", errorCode(t, body))
		assert.Nil(t, flow.gotReq)
	})

	t.Run("too long recipient", func(t *testing.T) {
		flow := &fakeCommunicationFlow{}
		resp, body := doRequest(t, mount(flow), post(`{"to":"`+strings.Repeat("1", 40)+`","message":"Hi"}`))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
		assert.Nil(t, flow.gotReq)
	})

	t.Run("flow rejects empty message", func(t *testing.T) {
		flow := &fakeCommunicationFlow{err: businessflow.ErrMessageRequired}
		resp, body := doRequest(t, mount(flow), post(`{"to":"+254700000001"}`))
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "message is required", body.Message)
	})
}

func TestExportHandler_SendsAttachment(t *testing.T) {
	flow := &fakeExportFlow{}
	app := newTestApp(3, func(app *fiber.App) {
		app.Get("/exports/debtors", NewExportHandler(flow).ExportDebtors)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/exports/debtors?format=csv", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=debtors.csv", resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "csv", flow.gotFormat)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Name\nJane\n", string(body))
}

func TestPathID_RejectsNonNumeric(t *testing.T) {
	h := newBaseHandler()
	app := newTestApp(1, func(app *fiber.App) {
		app.Get("/debtors/:id", func(c fiber.Ctx) error {
			id, err := h.pathID(c, "id")
			if id == 0 {
				return err
			}
			return c.SendString(fmt.Sprint(id))
		})
	})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/debtors/abc", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", errorCode(t, body))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/debtors/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
