package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/elecpower/internal/auth"
	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/BradenHooton/elecpower/internal/services"
	pkghttp "github.com/BradenHooton/elecpower/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds access token claims for userID, as the auth middleware would
func WithAuthContext(req *http.Request, userID uuid.UUID) *http.Request {
	claims := &models.TokenClaims{
		Type:             models.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode error response")
	assert.False(t, resp.Success)
	assert.Equal(t, expectedStatus, resp.StatusCode)
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// SuccessEnvelope decodes the success envelope with its data left raw.
type SuccessEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DecodeSuccess asserts status and decodes the envelope's data into target
func DecodeSuccess(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) SuccessEnvelope {
	t.Helper()
	var env SuccessEnvelope
	AssertJSONResponse(t, w, expectedStatus, &env)
	assert.True(t, env.Success)
	if target != nil {
		require.NoError(t, json.Unmarshal(env.Data, target), "Failed to decode data")
	}
	return env
}

var fixedTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// ============================================================================
// Mock services
// ============================================================================

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc       func(ctx context.Context, in services.RegisterInput, meta services.RequestMeta) (*models.User, error)
	AdminCreateFunc    func(ctx context.Context, actorID uuid.UUID, in services.AdminCreateInput) (*models.User, error)
	LoginFunc          func(ctx context.Context, email, password string, meta services.RequestMeta) (*services.LoginResult, error)
	ChangePasswordFunc func(ctx context.Context, in services.ChangePasswordInput) error
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput, meta services.RequestMeta) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.RegisterFunc(ctx, in, meta)
}

func (m *MockAuthService) AdminCreate(ctx context.Context, actorID uuid.UUID, in services.AdminCreateInput) (*models.User, error) {
	if m.AdminCreateFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.AdminCreateFunc(ctx, actorID, in)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, meta services.RequestMeta) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, email, password, meta)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, in services.ChangePasswordInput) error {
	if m.ChangePasswordFunc == nil {
		return nil
	}
	return m.ChangePasswordFunc(ctx, in)
}

// MockUserService implements UserService for testing
type MockUserService struct {
	GetUserFunc       func(ctx context.Context, id uuid.UUID) (*models.UserDetail, error)
	ListUsersFunc     func(ctx context.Context, params models.ListUsersParams) (*models.UserListResult, error)
	ListEmployeesFunc func(ctx context.Context) ([]*models.User, error)
	UpdateUserFunc    func(ctx context.Context, actorID, targetID uuid.UUID, patch models.UserPatch) (*models.User, error)
	DeleteUserFunc    func(ctx context.Context, actorID, targetID uuid.UUID) error
	UpdateRoleFunc    func(ctx context.Context, actorID, targetID uuid.UUID, isAdmin bool) (*models.User, error)
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*models.UserDetail, error) {
	if m.GetUserFunc == nil {
		return nil, models.NewNotFoundError("User")
	}
	return m.GetUserFunc(ctx, id)
}

func (m *MockUserService) ListUsers(ctx context.Context, params models.ListUsersParams) (*models.UserListResult, error) {
	if m.ListUsersFunc == nil {
		return &models.UserListResult{}, nil
	}
	return m.ListUsersFunc(ctx, params)
}

func (m *MockUserService) ListEmployees(ctx context.Context) ([]*models.User, error) {
	if m.ListEmployeesFunc == nil {
		return []*models.User{}, nil
	}
	return m.ListEmployeesFunc(ctx)
}

func (m *MockUserService) UpdateUser(ctx context.Context, actorID, targetID uuid.UUID, patch models.UserPatch) (*models.User, error) {
	if m.UpdateUserFunc == nil {
		return nil, models.NewNotFoundError("User")
	}
	return m.UpdateUserFunc(ctx, actorID, targetID, patch)
}

func (m *MockUserService) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	if m.DeleteUserFunc == nil {
		return nil
	}
	return m.DeleteUserFunc(ctx, actorID, targetID)
}

func (m *MockUserService) UpdateRole(ctx context.Context, actorID, targetID uuid.UUID, isAdmin bool) (*models.User, error) {
	if m.UpdateRoleFunc == nil {
		return nil, models.NewNotFoundError("User")
	}
	return m.UpdateRoleFunc(ctx, actorID, targetID, isAdmin)
}

// MockProjectService implements ProjectService for testing
type MockProjectService struct {
	CreateProjectFunc func(ctx context.Context, in services.ProjectInput) (*models.Project, error)
	GetProjectFunc    func(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjectsFunc  func(ctx context.Context) ([]*models.Project, error)
	UpdateProjectFunc func(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error)
	DeleteProjectFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *MockProjectService) CreateProject(ctx context.Context, in services.ProjectInput) (*models.Project, error) {
	if m.CreateProjectFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateProjectFunc(ctx, in)
}

func (m *MockProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if m.GetProjectFunc == nil {
		return nil, models.NewNotFoundError("Project")
	}
	return m.GetProjectFunc(ctx, id)
}

func (m *MockProjectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	if m.ListProjectsFunc == nil {
		return []*models.Project{}, nil
	}
	return m.ListProjectsFunc(ctx)
}

func (m *MockProjectService) UpdateProject(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error) {
	if m.UpdateProjectFunc == nil {
		return nil, models.NewNotFoundError("Project")
	}
	return m.UpdateProjectFunc(ctx, id, patch)
}

func (m *MockProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if m.DeleteProjectFunc == nil {
		return nil
	}
	return m.DeleteProjectFunc(ctx, id)
}

// MockTaskService implements TaskService for testing
type MockTaskService struct {
	CreateTaskFunc       func(ctx context.Context, projectID uuid.UUID, in services.TaskInput) (*models.Task, error)
	GetTaskFunc          func(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListTasksFunc        func(ctx context.Context) ([]*models.Task, error)
	ListProjectTasksFunc func(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error)
	UpdateTaskFunc       func(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error)
	AssignTaskFunc       func(ctx context.Context, id, employeeID uuid.UUID) (*models.Task, error)
	SelfAssignTaskFunc   func(ctx context.Context, id, userID uuid.UUID) (*models.Task, error)
	DeleteTaskFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *MockTaskService) CreateTask(ctx context.Context, projectID uuid.UUID, in services.TaskInput) (*models.Task, error) {
	if m.CreateTaskFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateTaskFunc(ctx, projectID, in)
}

func (m *MockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if m.GetTaskFunc == nil {
		return nil, models.NewNotFoundError("Task")
	}
	return m.GetTaskFunc(ctx, id)
}

func (m *MockTaskService) ListTasks(ctx context.Context) ([]*models.Task, error) {
	if m.ListTasksFunc == nil {
		return []*models.Task{}, nil
	}
	return m.ListTasksFunc(ctx)
}

func (m *MockTaskService) ListProjectTasks(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	if m.ListProjectTasksFunc == nil {
		return []*models.Task{}, nil
	}
	return m.ListProjectTasksFunc(ctx, projectID)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	if m.UpdateTaskFunc == nil {
		return nil, models.NewNotFoundError("Task")
	}
	return m.UpdateTaskFunc(ctx, id, patch)
}

func (m *MockTaskService) AssignTask(ctx context.Context, id, employeeID uuid.UUID) (*models.Task, error) {
	if m.AssignTaskFunc == nil {
		return nil, models.NewNotFoundError("Task")
	}
	return m.AssignTaskFunc(ctx, id, employeeID)
}

func (m *MockTaskService) SelfAssignTask(ctx context.Context, id, userID uuid.UUID) (*models.Task, error) {
	if m.SelfAssignTaskFunc == nil {
		return nil, models.NewNotFoundError("Task")
	}
	return m.SelfAssignTaskFunc(ctx, id, userID)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if m.DeleteTaskFunc == nil {
		return nil
	}
	return m.DeleteTaskFunc(ctx, id)
}

// MockCabinetService implements CabinetService for testing
type MockCabinetService struct {
	CreateCabinetFunc         func(ctx context.Context, projectID uuid.UUID, in services.CabinetInput) (*models.ElectricalCabinet, error)
	GetCabinetFunc            func(ctx context.Context, id uuid.UUID) (*models.ElectricalCabinet, error)
	ListCabinetsFunc          func(ctx context.Context) ([]*models.ElectricalCabinet, error)
	GetProjectCabinetFunc     func(ctx context.Context, projectID uuid.UUID) (*models.ElectricalCabinet, error)
	UpdateCabinetFunc         func(ctx context.Context, id uuid.UUID, patch models.CabinetPatch) (*models.ElectricalCabinet, error)
	AssignMaterialsFunc       func(ctx context.Context, id uuid.UUID, lines []models.MaterialAssignment) (*models.ElectricalCabinet, error)
	UpdateCabinetMaterialFunc func(ctx context.Context, cabinetID, assignmentID, callerID uuid.UUID, patch models.CabinetMaterialPatch) (*models.CabinetMaterial, error)
	ListVerificationsFunc     func(ctx context.Context, cabinetID uuid.UUID) ([]*models.MaterialVerification, error)
	AddMaintenanceFunc        func(ctx context.Context, id uuid.UUID, date time.Time, description string) (*models.ElectricalCabinet, error)
	GenerateQRCodeFunc        func(ctx context.Context, id uuid.UUID) (*models.QRCode, error)
	ScanCabinetFunc           func(ctx context.Context, id uuid.UUID) (*models.QRCode, error)
}

func (m *MockCabinetService) CreateCabinet(ctx context.Context, projectID uuid.UUID, in services.CabinetInput) (*models.ElectricalCabinet, error) {
	if m.CreateCabinetFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateCabinetFunc(ctx, projectID, in)
}

func (m *MockCabinetService) GetCabinet(ctx context.Context, id uuid.UUID) (*models.ElectricalCabinet, error) {
	if m.GetCabinetFunc == nil {
		return nil, models.NewNotFoundError("Electrical cabinet")
	}
	return m.GetCabinetFunc(ctx, id)
}

func (m *MockCabinetService) ListCabinets(ctx context.Context) ([]*models.ElectricalCabinet, error) {
	if m.ListCabinetsFunc == nil {
		return []*models.ElectricalCabinet{}, nil
	}
	return m.ListCabinetsFunc(ctx)
}

func (m *MockCabinetService) GetProjectCabinet(ctx context.Context, projectID uuid.UUID) (*models.ElectricalCabinet, error) {
	if m.GetProjectCabinetFunc == nil {
		return nil, models.NewNotFoundError("Electrical cabinet")
	}
	return m.GetProjectCabinetFunc(ctx, projectID)
}

func (m *MockCabinetService) UpdateCabinet(ctx context.Context, id uuid.UUID, patch models.CabinetPatch) (*models.ElectricalCabinet, error) {
	if m.UpdateCabinetFunc == nil {
		return nil, models.NewNotFoundError("Electrical cabinet")
	}
	return m.UpdateCabinetFunc(ctx, id, patch)
}

func (m *MockCabinetService) AssignMaterials(ctx context.Context, id uuid.UUID, lines []models.MaterialAssignment) (*models.ElectricalCabinet, error) {
	if m.AssignMaterialsFunc == nil {
		return nil, models.NewNotFoundError("Electrical cabinet")
	}
	return m.AssignMaterialsFunc(ctx, id, lines)
}

func (m *MockCabinetService) UpdateCabinetMaterial(ctx context.Context, cabinetID, assignmentID, callerID uuid.UUID, patch models.CabinetMaterialPatch) (*models.CabinetMaterial, error) {
	if m.UpdateCabinetMaterialFunc == nil {
		return nil, models.NewNotFoundError("Material in cabinet")
	}
	return m.UpdateCabinetMaterialFunc(ctx, cabinetID, assignmentID, callerID, patch)
}

func (m *MockCabinetService) ListVerifications(ctx context.Context, cabinetID uuid.UUID) ([]*models.MaterialVerification, error) {
	if m.ListVerificationsFunc == nil {
		return []*models.MaterialVerification{}, nil
	}
	return m.ListVerificationsFunc(ctx, cabinetID)
}

func (m *MockCabinetService) AddMaintenance(ctx context.Context, id uuid.UUID, date time.Time, description string) (*models.ElectricalCabinet, error) {
	if m.AddMaintenanceFunc == nil {
		return nil, models.NewNotFoundError("Electrical cabinet")
	}
	return m.AddMaintenanceFunc(ctx, id, date, description)
}

func (m *MockCabinetService) GenerateQRCode(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	if m.GenerateQRCodeFunc == nil {
		return nil, models.NewNotFoundError("Electrical cabinet")
	}
	return m.GenerateQRCodeFunc(ctx, id)
}

func (m *MockCabinetService) ScanCabinet(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	if m.ScanCabinetFunc == nil {
		return nil, models.NewNotFoundError("Electrical cabinet")
	}
	return m.ScanCabinetFunc(ctx, id)
}

// MockMaterialService implements MaterialService for testing
type MockMaterialService struct {
	CreateMaterialFunc       func(ctx context.Context, in services.MaterialInput) (*models.Material, error)
	GetMaterialFunc          func(ctx context.Context, id uuid.UUID) (*models.Material, error)
	ListMaterialsFunc        func(ctx context.Context) ([]*models.Material, error)
	UpdateMaterialFunc       func(ctx context.Context, id uuid.UUID, patch models.MaterialPatch) (*models.Material, error)
	UpdateMaterialStatusFunc func(ctx context.Context, id uuid.UUID, status models.MaterialStatus) (*models.Material, error)
	DeleteMaterialFunc       func(ctx context.Context, id uuid.UUID) error
	ListProjectMaterialsFunc func(ctx context.Context, projectID uuid.UUID) ([]*models.CabinetMaterialDetail, error)
	ListCabinetMaterialsFunc func(ctx context.Context, cabinetID uuid.UUID) ([]*models.CabinetMaterialDetail, error)
}

func (m *MockMaterialService) CreateMaterial(ctx context.Context, in services.MaterialInput) (*models.Material, error) {
	if m.CreateMaterialFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateMaterialFunc(ctx, in)
}

func (m *MockMaterialService) GetMaterial(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	if m.GetMaterialFunc == nil {
		return nil, models.NewNotFoundError("Material")
	}
	return m.GetMaterialFunc(ctx, id)
}

func (m *MockMaterialService) ListMaterials(ctx context.Context) ([]*models.Material, error) {
	if m.ListMaterialsFunc == nil {
		return []*models.Material{}, nil
	}
	return m.ListMaterialsFunc(ctx)
}

func (m *MockMaterialService) UpdateMaterial(ctx context.Context, id uuid.UUID, patch models.MaterialPatch) (*models.Material, error) {
	if m.UpdateMaterialFunc == nil {
		return nil, models.NewNotFoundError("Material")
	}
	return m.UpdateMaterialFunc(ctx, id, patch)
}

func (m *MockMaterialService) UpdateMaterialStatus(ctx context.Context, id uuid.UUID, status models.MaterialStatus) (*models.Material, error) {
	if m.UpdateMaterialStatusFunc == nil {
		return nil, models.NewNotFoundError("Material")
	}
	return m.UpdateMaterialStatusFunc(ctx, id, status)
}

func (m *MockMaterialService) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	if m.DeleteMaterialFunc == nil {
		return nil
	}
	return m.DeleteMaterialFunc(ctx, id)
}

func (m *MockMaterialService) ListProjectMaterials(ctx context.Context, projectID uuid.UUID) ([]*models.CabinetMaterialDetail, error) {
	if m.ListProjectMaterialsFunc == nil {
		return []*models.CabinetMaterialDetail{}, nil
	}
	return m.ListProjectMaterialsFunc(ctx, projectID)
}

func (m *MockMaterialService) ListCabinetMaterials(ctx context.Context, cabinetID uuid.UUID) ([]*models.CabinetMaterialDetail, error) {
	if m.ListCabinetMaterialsFunc == nil {
		return []*models.CabinetMaterialDetail{}, nil
	}
	return m.ListCabinetMaterialsFunc(ctx, cabinetID)
}

// MockMaterialRequestService implements MaterialRequestService for testing
type MockMaterialRequestService struct {
	CreateRequestFunc  func(ctx context.Context, callerID uuid.UUID, in services.MaterialRequestInput) (*models.MaterialRequest, error)
	TotalRequestedFunc func(ctx context.Context, materialID uuid.UUID) (int, error)
}

func (m *MockMaterialRequestService) CreateRequest(ctx context.Context, callerID uuid.UUID, in services.MaterialRequestInput) (*models.MaterialRequest, error) {
	if m.CreateRequestFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateRequestFunc(ctx, callerID, in)
}

func (m *MockMaterialRequestService) TotalRequested(ctx context.Context, materialID uuid.UUID) (int, error) {
	if m.TotalRequestedFunc == nil {
		return 0, nil
	}
	return m.TotalRequestedFunc(ctx, materialID)
}

// MockIncidentService implements IncidentService for testing
type MockIncidentService struct {
	ReportIncidentFunc       func(ctx context.Context, projectID, reporterID uuid.UUID, in services.IncidentInput) (*models.IncidentReport, error)
	ListProjectIncidentsFunc func(ctx context.Context, projectID uuid.UUID) ([]*models.IncidentReport, error)
	UpdateIncidentStatusFunc func(ctx context.Context, id uuid.UUID, status models.IncidentStatus, notes string) (*models.IncidentReport, error)
}

func (m *MockIncidentService) ReportIncident(ctx context.Context, projectID, reporterID uuid.UUID, in services.IncidentInput) (*models.IncidentReport, error) {
	if m.ReportIncidentFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.ReportIncidentFunc(ctx, projectID, reporterID, in)
}

func (m *MockIncidentService) ListProjectIncidents(ctx context.Context, projectID uuid.UUID) ([]*models.IncidentReport, error) {
	if m.ListProjectIncidentsFunc == nil {
		return []*models.IncidentReport{}, nil
	}
	return m.ListProjectIncidentsFunc(ctx, projectID)
}

func (m *MockIncidentService) UpdateIncidentStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus, notes string) (*models.IncidentReport, error) {
	if m.UpdateIncidentStatusFunc == nil {
		return nil, models.NewNotFoundError("Incident report")
	}
	return m.UpdateIncidentStatusFunc(ctx, id, status, notes)
}

var (
	_ AuthServiceInterface   = (*MockAuthService)(nil)
	_ UserService            = (*MockUserService)(nil)
	_ ProjectService         = (*MockProjectService)(nil)
	_ TaskService            = (*MockTaskService)(nil)
	_ CabinetService         = (*MockCabinetService)(nil)
	_ MaterialService        = (*MockMaterialService)(nil)
	_ MaterialRequestService = (*MockMaterialRequestService)(nil)
	_ IncidentService        = (*MockIncidentService)(nil)
)
