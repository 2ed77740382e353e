package datarequest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scis/scis/internal/domain/consent"
	"github.com/scis/scis/internal/domain/endpoint"
	"github.com/scis/scis/internal/domain/identity"
	"github.com/scis/scis/internal/platform/auth"
	"github.com/scis/scis/internal/platform/fhir"
)

// -- Mocks --

type mockRepo struct {
	items map[uuid.UUID]*DataRequest
	// statuses in the order Update persisted them
	updates []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*DataRequest)}
}

func (m *mockRepo) Create(_ context.Context, r *DataRequest) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	m.items[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*DataRequest, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRepo) Update(_ context.Context, r *DataRequest) error {
	m.items[r.ID] = r
	m.updates = append(m.updates, r.Status)
	return nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	var result []*DataRequest
	for _, r := range m.items {
		if r.RequestingUserID == userID {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByHospital(_ context.Context, hospitalID uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	var result []*DataRequest
	for _, r := range m.items {
		if r.RequestingHospitalID == hospitalID {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

type mockDirectory struct {
	patients map[string]*identity.Patient
	users    map[uuid.UUID]*identity.User
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		patients: make(map[string]*identity.Patient),
		users:    make(map[uuid.UUID]*identity.User),
	}
}

func (m *mockDirectory) GetPatient(_ context.Context, id uuid.UUID) (*identity.Patient, error) {
	for _, p := range m.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, identity.ErrPatientNotFound
}

func (m *mockDirectory) GetPatientByExternalID(_ context.Context, patientID string) (*identity.Patient, error) {
	p, ok := m.patients[patientID]
	if !ok {
		return nil, identity.ErrPatientNotFound
	}
	return p, nil
}

func (m *mockDirectory) GetUser(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

type consentKey struct {
	patientID  uuid.UUID
	hospitalID uuid.UUID
	dataType   string
}

type mockConsentStore struct {
	active  map[consentKey]*consent.PatientConsent
	records []consent.RecordParams
}

func newMockConsentStore() *mockConsentStore {
	return &mockConsentStore{active: make(map[consentKey]*consent.PatientConsent)}
}

func (m *mockConsentStore) GetActive(_ context.Context, patientID, hospitalID uuid.UUID, dataType string) (*consent.PatientConsent, error) {
	c, ok := m.active[consentKey{patientID, hospitalID, dataType}]
	if !ok {
		return nil, consent.ErrNoConsent
	}
	if c.Expired(time.Now()) {
		return nil, consent.ErrNoConsent
	}
	return c, nil
}

func (m *mockConsentStore) Record(_ context.Context, p consentParams) (*consent.PatientConsent, error) {
	m.records = append(m.records, p)
	c := &consent.PatientConsent{
		ID:                   uuid.New(),
		PatientID:            p.PatientID,
		RequestingUserID:     p.RequestingUserID,
		RequestingHospitalID: p.RequestingHospitalID,
		DataType:             p.DataType,
		IsConsented:          p.Decision,
		ConsentDate:          time.Now(),
		Active:               true,
	}
	m.active[consentKey{p.PatientID, p.RequestingHospitalID, p.DataType}] = c
	return c, nil
}

type consentParams = consent.RecordParams

type mockResolver struct {
	endpoints map[consentKey]*endpoint.DataRequestEndpoint
	err       error
}

func newMockResolver() *mockResolver {
	return &mockResolver{endpoints: make(map[consentKey]*endpoint.DataRequestEndpoint)}
}

func (m *mockResolver) Resolve(_ context.Context, hospitalID uuid.UUID, dataType string) (*endpoint.DataRequestEndpoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.endpoints[consentKey{hospitalID: hospitalID, dataType: dataType}]
	if !ok {
		return nil, endpoint.ErrNotConfigured
	}
	if !e.Active {
		return nil, endpoint.ErrInactive
	}
	return e, nil
}

type mockFetcher struct {
	result *fhir.FetchResult
	err    error
	calls  int
}

func (m *mockFetcher) Fetch(_ context.Context, _ fhir.FetchRequest) (*fhir.FetchResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// -- Fixture --

type fixture struct {
	svc      *Service
	repo     *mockRepo
	dir      *mockDirectory
	consents *mockConsentStore
	resolver *mockResolver
	fetcher  *mockFetcher

	hospitalA uuid.UUID
	hospitalB uuid.UUID
	doctorA   *identity.User
	staffB    *identity.User
	managerA  *identity.User
	patient   *identity.Patient
}

func newFixture() *fixture {
	f := &fixture{
		repo:      newMockRepo(),
		dir:       newMockDirectory(),
		consents:  newMockConsentStore(),
		resolver:  newMockResolver(),
		fetcher:   &mockFetcher{result: &fhir.FetchResult{Body: `{"resourceType":"Bundle"}`, StatusCode: 200, ElapsedMs: 42}},
		hospitalA: uuid.New(),
		hospitalB: uuid.New(),
	}
	f.svc = NewService(f.repo, f.dir, f.dir, f.consents, f.resolver, f.fetcher)

	f.doctorA = &identity.User{ID: uuid.New(), Email: "doc@a.org", FullName: "Dr A", Role: auth.RoleDoctor, HospitalID: &f.hospitalA, Active: true}
	f.staffB = &identity.User{ID: uuid.New(), Email: "staff@b.org", FullName: "Staff B", Role: auth.RoleStaff, HospitalID: &f.hospitalB, Active: true}
	f.managerA = &identity.User{ID: uuid.New(), Email: "mgr@a.org", FullName: "Mgr A", Role: auth.RoleHospitalManager, HospitalID: &f.hospitalA, Active: true}
	for _, u := range []*identity.User{f.doctorA, f.staffB, f.managerA} {
		f.dir.users[u.ID] = u
	}

	f.patient = &identity.Patient{ID: uuid.New(), PatientID: "P-1001", FirstName: "Ada", LastName: "Mensah", HospitalID: f.hospitalA, Active: true}
	f.dir.patients[f.patient.PatientID] = f.patient

	// Hospital A serves every clinical data type by default.
	for _, dt := range []string{auth.DataTypeLabResults, auth.DataTypeMedicalHistory, auth.DataTypeMedications} {
		f.resolver.endpoints[consentKey{hospitalID: f.hospitalA, dataType: dt}] = &endpoint.DataRequestEndpoint{
			ID: uuid.New(), HospitalID: f.hospitalA, DataType: dt,
			URL: "https://a.example.org/fhir", HTTPMethod: "GET", AuthType: fhir.AuthNone, Active: true,
		}
	}
	return f
}

// -- Submit Tests --

func TestSubmit_SameHospitalCompletes(t *testing.T) {
	f := newFixture()

	req, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeLabResults, "treatment review")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != StatusCompleted {
		t.Errorf("expected Completed, got %s", req.Status)
	}
	if req.IsCrossHospitalRequest {
		t.Error("expected same-hospital request")
	}
	if !req.IsRoleAuthorized {
		t.Error("expected role authorized")
	}
	if req.ResponseData == nil || *req.ResponseData != `{"resourceType":"Bundle"}` {
		t.Error("expected response body stored verbatim")
	}
	if req.ResponseTimeMs == nil || *req.ResponseTimeMs != 42 {
		t.Error("expected response time recorded")
	}
}

func TestSubmit_CrossHospitalNoConsentStaysPending(t *testing.T) {
	f := newFixture()

	req, err := f.svc.Submit(context.Background(), f.staffB.ID, "P-1001", auth.DataTypeMedicalHistory, "care transfer")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != StatusPending {
		t.Errorf("expected Pending, got %s", req.Status)
	}
	if !req.IsCrossHospitalRequest {
		t.Error("expected cross-hospital request")
	}
	if req.IsConsentValid {
		t.Error("expected consent not valid")
	}
	if req.ResponseData != nil {
		t.Error("expected no response data before approval")
	}
	if f.fetcher.calls != 0 {
		t.Error("expected no fetch before approval")
	}
}

func TestSubmit_CrossHospitalWithConsentCompletes(t *testing.T) {
	f := newFixture()

	f.consents.active[consentKey{f.patient.ID, f.hospitalB, auth.DataTypeMedicalHistory}] = &consent.PatientConsent{
		IsConsented: true, Active: true, ConsentDate: time.Now(),
	}

	req, err := f.svc.Submit(context.Background(), f.staffB.ID, "P-1001", auth.DataTypeMedicalHistory, "care transfer")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != StatusCompleted {
		t.Errorf("expected Completed, got %s", req.Status)
	}
	if !req.IsConsentValid {
		t.Error("expected consent valid")
	}
}

func TestSubmit_ExpiredConsentTreatedAsAbsent(t *testing.T) {
	f := newFixture()

	past := time.Now().Add(-time.Hour)
	f.consents.active[consentKey{f.patient.ID, f.hospitalB, auth.DataTypeMedicalHistory}] = &consent.PatientConsent{
		IsConsented: true, Active: true, ExpiryDate: &past, ConsentDate: past.Add(-time.Hour),
	}

	req, err := f.svc.Submit(context.Background(), f.staffB.ID, "P-1001", auth.DataTypeMedicalHistory, "care transfer")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != StatusPending {
		t.Errorf("expected expired consent to leave request Pending, got %s", req.Status)
	}
}

func TestSubmit_UnauthorizedRolePersistsDenied(t *testing.T) {
	f := newFixture()

	req, err := f.svc.Submit(context.Background(), f.staffB.ID, "P-1001", auth.DataTypeLabResults, "curiosity")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != StatusDenied {
		t.Errorf("expected Denied, got %s", req.Status)
	}
	if req.IsRoleAuthorized {
		t.Error("expected role not authorized")
	}
	if req.DenialReason == nil || *req.DenialReason != "Unauthorized role" {
		t.Errorf("expected denial reason 'Unauthorized role', got %v", req.DenialReason)
	}
	if len(f.repo.items) != 1 {
		t.Error("expected denied request persisted")
	}
}

func TestSubmit_ValidationAndNotFound(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Submit(context.Background(), f.doctorA.ID, "", auth.DataTypeLabResults, "x"); err == nil {
		t.Error("expected error for missing patient id")
	}
	if _, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", "Billing", "x"); err == nil {
		t.Error("expected error for invalid data type")
	}
	if _, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeLabResults, ""); err == nil {
		t.Error("expected error for missing purpose")
	}
	if _, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-9999", auth.DataTypeLabResults, "x"); !errors.Is(err, identity.ErrPatientNotFound) {
		t.Errorf("expected patient not found, got %v", err)
	}
	if _, err := f.svc.Submit(context.Background(), uuid.New(), "P-1001", auth.DataTypeLabResults, "x"); !errors.Is(err, identity.ErrUserNotFound) {
		t.Errorf("expected user not found, got %v", err)
	}
	if len(f.repo.items) != 0 {
		t.Error("expected no request persisted for rejected submissions")
	}
}

func TestSubmit_InactivePatientIsNotFound(t *testing.T) {
	f := newFixture()
	f.patient.Active = false

	if _, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeLabResults, "x"); !errors.Is(err, identity.ErrPatientNotFound) {
		t.Errorf("expected inactive patient treated as not found, got %v", err)
	}
}

func TestSubmit_UpstreamFailureBecomesDenied(t *testing.T) {
	f := newFixture()
	f.fetcher.err = &fhir.FetchError{Summary: "non-2xx response: 503", StatusCode: 503, ElapsedMs: 17}

	req, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeLabResults, "treatment")
	if err != nil {
		t.Fatalf("expected no error past acceptance, got %v", err)
	}
	if req.Status != StatusDenied {
		t.Errorf("expected Denied on upstream failure, got %s", req.Status)
	}
	if req.DenialReason == nil || *req.DenialReason != "non-2xx response: 503" {
		t.Errorf("expected failure summary, got %v", req.DenialReason)
	}
	if req.ResponseTimeMs == nil || *req.ResponseTimeMs != 17 {
		t.Error("expected elapsed time recorded on failure")
	}
}

func TestSubmit_MissingEndpointBecomesDenied(t *testing.T) {
	f := newFixture()

	req, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeMedications, "treatment")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// Medications has an endpoint; Immunizations does not.
	if req.Status != StatusCompleted {
		t.Fatalf("expected configured type to complete, got %s", req.Status)
	}

	req, err = f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeImmunizations, "treatment")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != StatusDenied {
		t.Errorf("expected Denied for unconfigured endpoint, got %s", req.Status)
	}
	if req.DenialReason == nil || *req.DenialReason != "No endpoint configured for data type" {
		t.Errorf("unexpected reason %v", req.DenialReason)
	}
}

func TestSubmit_InactiveEndpointBecomesDenied(t *testing.T) {
	f := newFixture()
	f.resolver.endpoints[consentKey{hospitalID: f.hospitalA, dataType: auth.DataTypeLabResults}].Active = false

	req, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeLabResults, "treatment")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != StatusDenied {
		t.Errorf("expected Denied for inactive endpoint, got %s", req.Status)
	}
	if req.DenialReason == nil || *req.DenialReason != "Endpoint deactivated" {
		t.Errorf("unexpected reason %v", req.DenialReason)
	}
}

func TestSubmit_SameHospitalNeverLeftPending(t *testing.T) {
	f := newFixture()
	f.fetcher.err = &fhir.FetchError{Summary: "endpoint unreachable: dial tcp", ElapsedMs: 3}

	for _, dt := range []string{auth.DataTypeLabResults, auth.DataTypeMedicalHistory, auth.DataTypeMedications, auth.DataTypeImmunizations} {
		req, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", dt, "treatment")
		if err != nil {
			t.Fatalf("%s: submit failed: %v", dt, err)
		}
		if req.Status == StatusPending {
			t.Errorf("%s: same-hospital request left Pending", dt)
		}
	}
}

// -- Approve Tests --

func submitPendingCross(t *testing.T, f *fixture) *DataRequest {
	t.Helper()
	req, err := f.svc.Submit(context.Background(), f.staffB.ID, "P-1001", auth.DataTypeMedicalHistory, "care transfer")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if req.Status != StatusPending {
		t.Fatalf("expected Pending fixture request, got %s", req.Status)
	}
	return req
}

func TestApprove_GrantRecordsConsentAndFetches(t *testing.T) {
	f := newFixture()
	req := submitPendingCross(t, f)

	got, err := f.svc.Approve(context.Background(), req.ID, f.managerA.ID, true, "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("expected Completed after approval, got %s", got.Status)
	}
	if !got.IsConsentValid {
		t.Error("expected consent marked valid")
	}
	if got.ApprovingUserID == nil || *got.ApprovingUserID != f.managerA.ID {
		t.Error("expected approving user recorded")
	}
	if got.ApprovalDate == nil {
		t.Error("expected approval date recorded")
	}
	if len(f.consents.records) != 1 {
		t.Fatalf("expected exactly one consent grant recorded, got %d", len(f.consents.records))
	}
	grant := f.consents.records[0]
	if grant.PatientID != f.patient.ID || grant.RequestingHospitalID != f.hospitalB ||
		grant.DataType != auth.DataTypeMedicalHistory || !grant.Decision {
		t.Errorf("unexpected consent grant %+v", grant)
	}
	if f.fetcher.calls != 1 {
		t.Errorf("expected one fetch after approval, got %d", f.fetcher.calls)
	}
}

func TestApprove_PersistsApprovalBeforeFetch(t *testing.T) {
	f := newFixture()
	req := submitPendingCross(t, f)

	got, err := f.svc.Approve(context.Background(), req.ID, f.managerA.ID, true, "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("expected Completed, got %s", got.Status)
	}
	// The grant must hit the store as Approved before the fetch resolves,
	// so a crash mid-fetch cannot lose the consent decision.
	if len(f.repo.updates) != 2 {
		t.Fatalf("expected two persisted transitions, got %v", f.repo.updates)
	}
	if f.repo.updates[0] != StatusApproved {
		t.Errorf("expected Approved persisted first, got %s", f.repo.updates[0])
	}
	if f.repo.updates[1] != StatusCompleted {
		t.Errorf("expected Completed persisted last, got %s", f.repo.updates[1])
	}
}

func TestApprove_DenialSetsReason(t *testing.T) {
	f := newFixture()
	req := submitPendingCross(t, f)

	got, err := f.svc.Approve(context.Background(), req.ID, f.managerA.ID, false, "not relevant")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.Status != StatusDenied {
		t.Errorf("expected Denied, got %s", got.Status)
	}
	if got.DenialReason == nil || *got.DenialReason != "not relevant" {
		t.Errorf("expected reason 'not relevant', got %v", got.DenialReason)
	}
	if got.ApprovalDate == nil {
		t.Error("expected approval date recorded")
	}
	if len(f.consents.records) != 0 {
		t.Error("expected no consent recorded on denial")
	}
}

func TestApprove_UpstreamFailureBecomesDenied(t *testing.T) {
	f := newFixture()
	req := submitPendingCross(t, f)
	f.fetcher.err = &fhir.FetchError{Summary: "endpoint unreachable: timeout", ElapsedMs: 15000}

	got, err := f.svc.Approve(context.Background(), req.ID, f.managerA.ID, true, "")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got.Status != StatusDenied {
		t.Errorf("expected Denied on upstream failure, got %s", got.Status)
	}
	// The consent grant still stands even though the fetch failed.
	if len(f.consents.records) != 1 {
		t.Error("expected consent grant recorded before fetch")
	}
}

func TestApprove_GuardRails(t *testing.T) {
	f := newFixture()
	req := submitPendingCross(t, f)

	// Approver from the wrong hospital
	if _, err := f.svc.Approve(context.Background(), req.ID, f.staffB.ID, true, ""); !errors.Is(err, ErrNotApprover) {
		t.Errorf("expected ErrNotApprover for wrong hospital, got %v", err)
	}

	// Unknown request
	if _, err := f.svc.Approve(context.Background(), uuid.New(), f.managerA.ID, true, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Already-terminal request
	if _, err := f.svc.Approve(context.Background(), req.ID, f.managerA.ID, false, "no"); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if _, err := f.svc.Approve(context.Background(), req.ID, f.managerA.ID, true, ""); !errors.Is(err, ErrNotPending) {
		t.Errorf("expected ErrNotPending for terminal request, got %v", err)
	}
}

func TestApprove_SameHospitalRequestRejected(t *testing.T) {
	f := newFixture()
	f.resolver.err = endpoint.ErrNotConfigured

	// Same-hospital submissions never sit in an approvable state.
	req, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeLabResults, "x")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := f.svc.Approve(context.Background(), req.ID, f.managerA.ID, true, ""); !errors.Is(err, ErrNotPending) {
		t.Errorf("expected ErrNotPending, got %v", err)
	}
}

func TestGetHistory(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeLabResults, "x"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := f.svc.Submit(context.Background(), f.doctorA.ID, "P-1001", auth.DataTypeMedications, "y"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	items, total, err := f.svc.GetHistory(context.Background(), f.doctorA.ID, 20, 0)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 requests, got total=%d len=%d", total, len(items))
	}
}
