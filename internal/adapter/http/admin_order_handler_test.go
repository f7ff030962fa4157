package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loayeid/shophub/internal/entity"
)

func seedOrder(ts *testServer, id string, status entity.OrderStatus) {
	ts.repo.orders[id] = &entity.Order{ID: id, UserID: "user-1", Status: status}
}

func staffHeader(ts *testServer, role entity.Role) map[string]string {
	token := signToken(ts.cfg, "staff-1", "Sam", "sam@shophub.example", role)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAdmin_ListRequiresStaffToken(t *testing.T) {
	ts := newTestServer()

	w := doJSON(ts, http.MethodGet, "/v1/admin/order/list", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// a regular customer token is not enough either
	w = doJSON(ts, http.MethodGet, "/v1/admin/order/list", "", staffHeader(ts, entity.RoleCustomer))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_ListReturnsOrders(t *testing.T) {
	ts := newTestServer()
	seedOrder(ts, "ord-1", entity.StatusProcessing)
	seedOrder(ts, "ord-2", entity.StatusShipped)

	w := doJSON(ts, http.MethodGet, "/v1/admin/order/list", "", staffHeader(ts, entity.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Orders []json.RawMessage `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Orders, 2)
}

func TestAdmin_EditTransitionsOrder(t *testing.T) {
	ts := newTestServer()
	seedOrder(ts, "ord-1", entity.StatusProcessing)

	w := doJSON(ts, http.MethodPatch, "/v1/admin/order/edit",
		`{"orderId":"ord-1","status":"shipped"}`, staffHeader(ts, entity.RoleManager))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, entity.StatusShipped, ts.repo.orders["ord-1"].Status)
	require.Len(t, ts.events.msgs, 1)
	assert.Equal(t, "shipped", ts.events.msgs[0].Status)
	assert.Equal(t, "staff-1", ts.events.msgs[0].Actor)
}

func TestAdmin_EditRefundFlagForcesRefund(t *testing.T) {
	ts := newTestServer()
	seedOrder(ts, "ord-1", entity.StatusProcessing)

	w := doJSON(ts, http.MethodPatch, "/v1/admin/order/edit",
		`{"orderId":"ord-1","refund":true}`, staffHeader(ts, entity.RoleManager))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.StatusRefunded, ts.repo.orders["ord-1"].Status)

	// refunding again is a quiet no-op
	w = doJSON(ts, http.MethodPatch, "/v1/admin/order/edit",
		`{"orderId":"ord-1","refund":true}`, staffHeader(ts, entity.RoleManager))
	assert.Equal(t, http.StatusOK, w.Code)

	// but any other move out of refunded is rejected
	w = doJSON(ts, http.MethodPatch, "/v1/admin/order/edit",
		`{"orderId":"ord-1","status":"shipped"}`, staffHeader(ts, entity.RoleManager))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_EditValidation(t *testing.T) {
	ts := newTestServer()
	seedOrder(ts, "ord-1", entity.StatusProcessing)
	hdr := staffHeader(ts, entity.RoleAdmin)

	w := doJSON(ts, http.MethodPatch, "/v1/admin/order/edit", `{"status":"shipped"}`, hdr)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing orderId")

	w = doJSON(ts, http.MethodPatch, "/v1/admin/order/edit", `{"orderId":"ord-1"}`, hdr)
	assert.Equal(t, http.StatusBadRequest, w.Code, "no status or refund flag")

	w = doJSON(ts, http.MethodPatch, "/v1/admin/order/edit", `{"orderId":"ord-1","status":"delivered"}`, hdr)
	assert.Equal(t, http.StatusBadRequest, w.Code, "skipping shipped")

	w = doJSON(ts, http.MethodPatch, "/v1/admin/order/edit", `{"orderId":"nope","status":"shipped"}`, hdr)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
