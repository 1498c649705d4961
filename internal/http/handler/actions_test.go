package handler

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mailroom/internal/model"
	"mailroom/internal/repository"
	"mailroom/internal/service"
	serviceMocks "mailroom/internal/service/mocks"
)

func TestRequestAction(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]string
		svcErr  error
		status  int
		code    string
		callSvc bool
	}{
		{"scan requested", map[string]string{"action": "OPEN_AND_SCAN"}, nil, http.StatusCreated, "", true},
		{"forward without address", map[string]string{"action": "FORWARD"}, nil, http.StatusUnprocessableEntity, "VALIDATION_FAILED", false},
		{"unknown action", map[string]string{"action": "BURN"}, nil, http.StatusUnprocessableEntity, "VALIDATION_FAILED", false},
		{"kyc missing", map[string]string{"action": "SHRED"}, service.ErrKYCRequired, http.StatusForbidden, "KYC_REQUIRED", true},
		{"no subscription", map[string]string{"action": "HOLD"}, service.ErrSubscriptionRequired, http.StatusPaymentRequired, "SUBSCRIPTION_REQUIRED", true},
		{"already pending", map[string]string{"action": "HOLD"}, service.ErrConflict, http.StatusConflict, "CONFLICT", true},
		{"item already shredded", map[string]string{"action": "HOLD"}, service.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(serviceMocks.MockActionService)
			app := newApp(&customer)
			app.Post("/mail/:id/actions", RequestAction(svc))

			if tt.callSvc {
				want := service.RequestActionInput{MailItemID: itemID, Action: model.ActionType(tt.body["action"])}
				if tt.svcErr != nil {
					svc.On("Request", mock.Anything, customer, want).Return(nil, tt.svcErr).Once()
				} else {
					svc.On("Request", mock.Anything, customer, want).
						Return(&model.MailActionRequest{ID: requestID, Status: model.RequestPending}, nil).Once()
				}
			}

			resp, err := app.Test(jsonRequest(http.MethodPost, "/mail/"+itemID+"/actions", tt.body))
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, resp).Error.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestActionTransitions(t *testing.T) {
	done := &model.MailActionRequest{ID: requestID, Status: model.RequestApproved}

	t.Run("approve", func(t *testing.T) {
		svc := new(serviceMocks.MockActionService)
		app := newApp(&operator)
		app.Post("/ops/actions/:id/approve", ApproveAction(svc))

		svc.On("Approve", mock.Anything, operator, requestID).Return(done, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/ops/actions/"+requestID+"/approve", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got model.MailActionRequest
		res := decodeResult(t, resp, &got)
		assert.True(t, res.Success)
		assert.Equal(t, "request approved", res.Message)
		assert.Equal(t, model.RequestApproved, got.Status)
		svc.AssertExpectations(t)
	})

	t.Run("start from wrong status", func(t *testing.T) {
		svc := new(serviceMocks.MockActionService)
		app := newApp(&operator)
		app.Post("/ops/actions/:id/start", StartAction(svc))

		svc.On("Start", mock.Anything, operator, requestID).Return(nil, service.ErrInvalidTransition).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/ops/actions/"+requestID+"/start", nil))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "INVALID_TRANSITION", decodeError(t, resp).Error.Code)
	})

	t.Run("cancel own request", func(t *testing.T) {
		svc := new(serviceMocks.MockActionService)
		app := newApp(&customer)
		app.Post("/actions/:id/cancel", CancelAction(svc))

		svc.On("Cancel", mock.Anything, customer, requestID).
			Return(&model.MailActionRequest{ID: requestID, Status: model.RequestCanceled}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/actions/"+requestID+"/cancel", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("reject needs a reason", func(t *testing.T) {
		svc := new(serviceMocks.MockActionService)
		app := newApp(&operator)
		app.Post("/ops/actions/:id/reject", RejectAction(svc))

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/ops/actions/"+requestID+"/reject", map[string]string{}))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		svc.On("Reject", mock.Anything, operator, requestID, "address incomplete").
			Return(&model.MailActionRequest{ID: requestID, Status: model.RequestRejected}, nil).Once()

		resp, _ = app.Test(jsonRequest(http.MethodPost, "/ops/actions/"+requestID+"/reject", map[string]string{"reason": "address incomplete"}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})
}

func TestCompleteAction(t *testing.T) {
	t.Run("scan upload", func(t *testing.T) {
		svc := new(serviceMocks.MockActionService)
		app := newApp(&operator)
		app.Post("/ops/actions/:id/complete", CompleteAction(svc))

		var scanned string
		svc.On("Complete", mock.Anything, operator, requestID, mock.MatchedBy(func(in service.CompleteActionInput) bool {
			return in.Scan != nil && in.Scan.Filename == "letter.pdf"
		})).Run(func(args mock.Arguments) {
			b, _ := io.ReadAll(args.Get(3).(service.CompleteActionInput).Scan.Reader)
			scanned = string(b)
		}).Return(&model.MailActionRequest{ID: requestID, Status: model.RequestCompleted}, nil).Once()

		resp, _ := app.Test(multipartRequest(t, http.MethodPost, "/ops/actions/"+requestID+"/complete", nil, "scan", "letter.pdf", []byte("%PDF")))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "%PDF", scanned)
		svc.AssertExpectations(t)
	})

	t.Run("forward details", func(t *testing.T) {
		svc := new(serviceMocks.MockActionService)
		app := newApp(&operator)
		app.Post("/ops/actions/:id/complete", CompleteAction(svc))

		svc.On("Complete", mock.Anything, operator, requestID, service.CompleteActionInput{Carrier: "DHL", TrackingNumber: "JD0001"}).
			Return(&model.MailActionRequest{ID: requestID, Status: model.RequestCompleted}, nil).Once()

		fields := map[string]string{"carrier": "DHL", "tracking_number": "JD0001"}
		resp, _ := app.Test(multipartRequest(t, http.MethodPost, "/ops/actions/"+requestID+"/complete", fields, "", "", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("missing scan", func(t *testing.T) {
		svc := new(serviceMocks.MockActionService)
		app := newApp(&operator)
		app.Post("/ops/actions/:id/complete", CompleteAction(svc))

		svc.On("Complete", mock.Anything, operator, requestID, mock.Anything).
			Return(nil, &service.ValidationError{Field: "scan", Message: "is required for OPEN_AND_SCAN"}).Once()

		resp, _ := app.Test(multipartRequest(t, http.MethodPost, "/ops/actions/"+requestID+"/complete", nil, "", "", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestListActions(t *testing.T) {
	svc := new(serviceMocks.MockActionService)
	app := newApp(&operator)
	app.Get("/ops/actions", ListActions(svc))

	f := repository.ActionFilter{Status: model.RequestPending, Action: model.ActionForward}
	svc.On("List", mock.Anything, operator, f, 20, 0).
		Return(&service.ListResult[model.MailActionRequest]{Total: 0, Limit: 20}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodGet, "/ops/actions?status=PENDING&action=FORWARD", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}
