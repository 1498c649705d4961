package handler

import (
	"encoding/json"
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

func TestIntakeMail(t *testing.T) {
	fields := map[string]string{
		"mailbox_id":   mailboxID,
		"sender":       "ACME Bank",
		"kind":         "PARCEL",
		"width_cm":     "40",
		"height_cm":    "20.5",
		"depth_cm":     "30",
		"weight_grams": "1200",
	}

	t.Run("with envelope photo", func(t *testing.T) {
		svc := new(serviceMocks.MockMailService)
		app := newApp(&operator)
		app.Post("/ops/mail", IntakeMail(svc))

		var gotEnvelope []byte
		svc.On("Intake", mock.Anything, operator, mock.MatchedBy(func(in service.IntakeInput) bool {
			return in.Envelope != nil &&
				in.MailboxID == mailboxID &&
				in.Kind == model.MailParcel &&
				in.Size == model.Dimensions{Width: 40, Height: 20.5, Depth: 30} &&
				in.WeightGrams == 1200 &&
				in.Envelope.Filename == "front.jpg"
		})).Run(func(args mock.Arguments) {
			in := args.Get(2).(service.IntakeInput)
			gotEnvelope, _ = io.ReadAll(in.Envelope.Reader)
		}).Return(&model.MailItem{ID: itemID, Kind: model.MailParcel, Oversized: true}, nil).Once()

		resp, err := app.Test(multipartRequest(t, http.MethodPost, "/ops/mail", fields, "envelope", "front.jpg", []byte("jpeg-bytes")))
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var item model.MailItem
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
		assert.True(t, item.Oversized)
		assert.Equal(t, "jpeg-bytes", string(gotEnvelope))
		svc.AssertExpectations(t)
	})

	t.Run("without envelope photo", func(t *testing.T) {
		svc := new(serviceMocks.MockMailService)
		app := newApp(&operator)
		app.Post("/ops/mail", IntakeMail(svc))

		svc.On("Intake", mock.Anything, operator, mock.MatchedBy(func(in service.IntakeInput) bool {
			return in.Envelope == nil
		})).Return(&model.MailItem{ID: itemID}, nil).Once()

		resp, _ := app.Test(multipartRequest(t, http.MethodPost, "/ops/mail", fields, "", "", nil))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("non numeric size", func(t *testing.T) {
		svc := new(serviceMocks.MockMailService)
		app := newApp(&operator)
		app.Post("/ops/mail", IntakeMail(svc))

		bad := map[string]string{"mailbox_id": mailboxID, "kind": "LETTER", "width_cm": "wide", "height_cm": "1", "depth_cm": "1"}
		resp, _ := app.Test(multipartRequest(t, http.MethodPost, "/ops/mail", bad, "", "", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Message, "width_cm")
		svc.AssertNotCalled(t, "Intake", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown kind", func(t *testing.T) {
		svc := new(serviceMocks.MockMailService)
		app := newApp(&operator)
		app.Post("/ops/mail", IntakeMail(svc))

		bad := map[string]string{"mailbox_id": mailboxID, "kind": "POSTCARD", "width_cm": "1", "height_cm": "1", "depth_cm": "1"}
		resp, _ := app.Test(multipartRequest(t, http.MethodPost, "/ops/mail", bad, "", "", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("mailbox not assigned", func(t *testing.T) {
		svc := new(serviceMocks.MockMailService)
		app := newApp(&operator)
		app.Post("/ops/mail", IntakeMail(svc))

		svc.On("Intake", mock.Anything, operator, mock.Anything).
			Return(nil, &service.ValidationError{Field: "mailbox_id", Message: "mailbox is not rented"}).Once()

		resp, _ := app.Test(multipartRequest(t, http.MethodPost, "/ops/mail", fields, "", "", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "mailbox_id: mailbox is not rented", decodeError(t, resp).Error.Message)
	})
}

func TestListMail(t *testing.T) {
	svc := new(serviceMocks.MockMailService)
	app := newApp(&customer)
	app.Get("/mail", ListMail(svc))

	f := repository.MailFilter{Status: model.MailReceived}
	svc.On("List", mock.Anything, customer, f, 20, 0).
		Return(&service.ListResult[model.MailItem]{Items: []model.MailItem{{ID: itemID}}, Total: 1, Limit: 20}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodGet, "/mail?status=RECEIVED", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.EqualValues(t, 1, res["total"])
	svc.AssertExpectations(t)
}

func TestGetMail(t *testing.T) {
	svc := new(serviceMocks.MockMailService)
	app := newApp(&customer)
	app.Get("/mail/:id", GetMail(svc))
	app.Get("/mail/:id/scan", MailScanURL(svc))
	app.Get("/mail/:id/envelope", MailEnvelopeURL(svc))

	t.Run("someone else's mail is not found", func(t *testing.T) {
		svc.On("Get", mock.Anything, customer, itemID).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodGet, "/mail/"+itemID, nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("scan url", func(t *testing.T) {
		svc.On("ScanURL", mock.Anything, customer, itemID).Return("https://files.example/scan?sig=1", nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodGet, "/mail/"+itemID+"/scan", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body urlResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "https://files.example/scan?sig=1", body.URL)
	})

	t.Run("no envelope photo", func(t *testing.T) {
		svc.On("EnvelopeURL", mock.Anything, customer, itemID).Return("", service.ErrNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodGet, "/mail/"+itemID+"/envelope", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	svc.AssertExpectations(t)
}
