package handler

import (
	"encoding/json"
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

const (
	locationID = "88888888-8888-8888-8888-888888888888"
	clusterID  = "99999999-9999-9999-9999-999999999999"
)

func TestLocations(t *testing.T) {
	svc := new(serviceMocks.MockLocationService)
	app := newApp(&admin)
	app.Post("/admin/locations", CreateLocation(svc))
	app.Get("/admin/locations", ListLocations(svc))
	app.Post("/admin/locations/:id/clusters", AddCluster(svc))
	app.Delete("/admin/clusters/:id", DeleteCluster(svc))

	t.Run("create", func(t *testing.T) {
		in := service.CreateLocationInput{
			Name: "Downtown", AddressLine: "1 Main St", City: "Springfield",
			PostalCode: "12345", Country: "US", Clusters: []string{"A", "B"},
		}
		svc.On("Create", mock.Anything, admin, in).Return(&model.Location{ID: locationID, Name: "Downtown"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/admin/locations", map[string]any{
			"name": "Downtown", "address_line": "1 Main St", "city": "Springfield",
			"postal_code": "12345", "country": "US", "clusters": []string{"A", "B"},
		}))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("create without clusters", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/admin/locations", map[string]any{
			"name": "Downtown", "address_line": "1 Main St", "city": "Springfield",
			"postal_code": "12345", "country": "US", "clusters": []string{},
		}))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		svc.On("List", mock.Anything).Return([]model.Location{{ID: locationID}}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodGet, "/admin/locations", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("add cluster", func(t *testing.T) {
		svc.On("AddCluster", mock.Anything, admin, locationID, "C").Return(&model.Cluster{ID: clusterID, Name: "C"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/admin/locations/"+locationID+"/clusters", map[string]string{"name": "C"}))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("delete cluster with mailboxes", func(t *testing.T) {
		svc.On("DeleteCluster", mock.Anything, admin, clusterID).Return(service.ErrConflict).Once()

		resp, _ := app.Test(jsonRequest(http.MethodDelete, "/admin/clusters/"+clusterID, nil))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	svc.AssertExpectations(t)
}

func TestMailboxes(t *testing.T) {
	svc := new(serviceMocks.MockMailboxService)
	app := newApp(&admin)
	app.Post("/admin/mailboxes", CreateMailbox(svc))
	app.Patch("/admin/mailboxes/:id", UpdateMailbox(svc))
	app.Post("/admin/mailboxes/:id/assign", AssignMailbox(svc))
	app.Post("/admin/mailboxes/:id/release", ReleaseMailbox(svc))
	app.Get("/ops/mailboxes", ListMailboxes(svc))
	app.Get("/ops/mailboxes/:id/fit", CheckFit(svc))

	size := model.Dimensions{Width: 30, Height: 10, Depth: 40}

	t.Run("create", func(t *testing.T) {
		in := service.CreateMailboxInput{ClusterID: clusterID, BoxNumber: "A-101", Size: size}
		svc.On("Create", mock.Anything, admin, in).Return(&model.Mailbox{ID: mailboxID}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/admin/mailboxes", map[string]any{
			"cluster_id": clusterID, "box_number": "A-101", "size": size,
		}))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("create with zero depth", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPost, "/admin/mailboxes", map[string]any{
			"cluster_id": clusterID, "box_number": "A-102",
			"size": map[string]float64{"width_cm": 30, "height_cm": 10, "depth_cm": 0},
		}))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Message, "depth_cm")
	})

	t.Run("disable", func(t *testing.T) {
		disabled := model.MailboxDisabled
		svc.On("Update", mock.Anything, admin, mailboxID, service.UpdateMailboxInput{Status: &disabled}).
			Return(&model.Mailbox{ID: mailboxID, Status: model.MailboxDisabled}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/admin/mailboxes/"+mailboxID, map[string]string{"status": "DISABLED"}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("cannot patch to assigned", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/admin/mailboxes/"+mailboxID, map[string]string{"status": "ASSIGNED"}))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("assign to renter who already has one", func(t *testing.T) {
		svc.On("Assign", mock.Anything, admin, mailboxID, userID).Return(nil, service.ErrConflict).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/admin/mailboxes/"+mailboxID+"/assign", map[string]string{"user_id": userID}))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("release", func(t *testing.T) {
		svc.On("Release", mock.Anything, admin, mailboxID).
			Return(&model.Mailbox{ID: mailboxID, Status: model.MailboxAvailable}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/admin/mailboxes/"+mailboxID+"/release", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "mailbox released", decodeResult(t, resp, nil).Message)
	})

	t.Run("list available", func(t *testing.T) {
		f := repository.MailboxFilter{Status: model.MailboxAvailable}
		svc.On("List", mock.Anything, f, 20, 0).Return(&service.ListResult[model.Mailbox]{Limit: 20}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodGet, "/ops/mailboxes?status=AVAILABLE", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("fit check", func(t *testing.T) {
		item := model.Dimensions{Width: 45, Height: 5, Depth: 25}
		svc.On("CheckFit", mock.Anything, mailboxID, item).
			Return(&service.FitResult{Fits: false, Mailbox: size, Item: item}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodGet, "/ops/mailboxes/"+mailboxID+"/fit?width=45&height=5&depth=25", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res service.FitResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.False(t, res.Fits)
	})

	svc.AssertExpectations(t)
}

func TestMyMailbox(t *testing.T) {
	svc := new(serviceMocks.MockMailboxService)
	app := newApp(&customer)
	app.Get("/me/mailbox", MyMailbox(svc))

	svc.On("Mine", mock.Anything, customer).Return(&service.MyMailbox{Lines: []string{"Ana", "Box A-101"}}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodGet, "/me/mailbox", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestAllowedIPs(t *testing.T) {
	svc := new(serviceMocks.MockAllowedIPService)
	app := newApp(&admin)
	app.Get("/admin/allowed-ips", ListAllowedIPs(svc))
	app.Post("/admin/allowed-ips", AddAllowedIP(svc))
	app.Delete("/admin/allowed-ips/:id", DeleteAllowedIP(svc))

	entryID := "12121212-1212-1212-1212-121212121212"

	t.Run("add", func(t *testing.T) {
		svc.On("Add", mock.Anything, admin, "10.0.0.0/8", "office").
			Return(&model.AllowedIP{ID: entryID, CIDR: "10.0.0.0/8"}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/admin/allowed-ips", map[string]string{"cidr": "10.0.0.0/8", "label": "office"}))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("add garbage", func(t *testing.T) {
		svc.On("Add", mock.Anything, admin, "not-an-ip", "").
			Return(nil, &service.ValidationError{Field: "cidr", Message: "must be an IP address or CIDR range"}).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/admin/allowed-ips", map[string]string{"cidr": "not-an-ip"}))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		svc.On("List", mock.Anything).Return([]model.AllowedIP{{ID: entryID}}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodGet, "/admin/allowed-ips", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		svc.On("Delete", mock.Anything, admin, entryID).Return(nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodDelete, "/admin/allowed-ips/"+entryID, nil))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	svc.AssertExpectations(t)
}

func TestListActivity(t *testing.T) {
	svc := new(serviceMocks.MockActivityService)
	app := newApp(&admin)
	app.Get("/admin/activity", ListActivity(svc))

	f := repository.ActivityFilter{EntityType: "mail_item"}
	svc.On("List", mock.Anything, f, 50, 0).
		Return(&service.ListResult[model.ActivityLog]{Limit: 50}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodGet, "/admin/activity?entity_type=mail_item&limit=50", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestListActivity_ByRequestID(t *testing.T) {
	svc := new(serviceMocks.MockActivityService)
	app := newApp(&admin)
	app.Get("/admin/activity", ListActivity(svc))

	f := repository.ActivityFilter{RequestID: "rid-9"}
	svc.On("List", mock.Anything, f, 20, 0).
		Return(&service.ListResult[model.ActivityLog]{Limit: 20}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodGet, "/admin/activity?request_id=rid-9", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}
