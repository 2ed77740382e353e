package datarequest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/scis/scis/internal/platform/auth"
)

func newTestContext(t *testing.T, method, target, body, userID, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" || role != "" {
		ctx := req.Context()
		ctx = context.WithValue(ctx, auth.UserIDKey, userID)
		ctx = context.WithValue(ctx, auth.UserRoleKey, role)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// The authenticated subject is the acting user. A caller must not be able to
// run the role check against someone else's id by naming it in the body.
func TestSubmit_BodyUserIDCannotOverrideToken(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := fmt.Sprintf(`{"requesting_user_id":%q,"patient_external_id":"P-1001","data_type":%q,"purpose":"care"}`,
		f.doctorA.ID, auth.DataTypeLabResults)
	c, rec := newTestContext(t, http.MethodPost, "/api/v1/data-requests", body, f.staffB.ID.String(), auth.RoleStaff)

	if err := h.Submit(c); err != nil {
		t.Fatalf("submit handler failed: %v", err)
	}
	var got DataRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.RequestingUserID != f.staffB.ID {
		t.Errorf("expected request attributed to token subject %s, got %s", f.staffB.ID, got.RequestingUserID)
	}
	if got.IsRoleAuthorized {
		t.Error("Staff must not pass the LabResults role check via a body-supplied id")
	}
	if got.Status != StatusDenied {
		t.Errorf("expected Denied, got %s", got.Status)
	}
}

func TestSubmit_DevIdentityFallsBackToBody(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := fmt.Sprintf(`{"requesting_user_id":%q,"patient_external_id":"P-1001","data_type":%q,"purpose":"care"}`,
		f.doctorA.ID, auth.DataTypeLabResults)
	c, rec := newTestContext(t, http.MethodPost, "/api/v1/data-requests", body, "dev-user", auth.RoleSystemManager)

	if err := h.Submit(c); err != nil {
		t.Fatalf("submit handler failed: %v", err)
	}
	var got DataRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.RequestingUserID != f.doctorA.ID {
		t.Errorf("expected body id honored under dev identity, got %s", got.RequestingUserID)
	}
}

func TestSubmit_NoIdentityNoBodyIsBadRequest(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := fmt.Sprintf(`{"patient_external_id":"P-1001","data_type":%q,"purpose":"care"}`, auth.DataTypeLabResults)
	c, _ := newTestContext(t, http.MethodPost, "/api/v1/data-requests", body, "", "")

	err := h.Submit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestApprove_BodyApproverIDCannotOverrideToken(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	// Pending cross-hospital request awaiting hospital A's decision.
	pending, err := f.svc.Submit(context.Background(), f.staffB.ID, "P-1001", auth.DataTypeMedicalHistory, "transfer")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if pending.Status != StatusPending {
		t.Fatalf("expected Pending fixture request, got %s", pending.Status)
	}

	// Authenticated as Staff at hospital B, naming hospital A's manager in
	// the body. The token identity must be the one checked.
	body := fmt.Sprintf(`{"approver_id":%q,"is_approved":true}`, f.managerA.ID)
	c, _ := newTestContext(t, http.MethodPost, "/api/v1/data-requests/:id/approve", body, f.staffB.ID.String(), auth.RoleStaff)
	c.SetParamNames("id")
	c.SetParamValues(pending.ID.String())

	err = h.Approve(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-approver token identity, got %v", err)
	}
	if got, _ := f.repo.GetByID(context.Background(), pending.ID); got.Status != StatusPending {
		t.Errorf("request must stay Pending, got %s", got.Status)
	}
}
