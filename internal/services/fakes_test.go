package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/BradenHooton/elecpower/internal/models"
	"github.com/google/uuid"
)

var (
	_ UserRepository            = fakeUsers{}
	_ ProjectRepository         = fakeProjects{}
	_ TaskRepository            = fakeTasks{}
	_ MaterialRepository        = fakeMaterials{}
	_ CabinetRepository         = fakeCabinets{}
	_ QRCodeRepository          = fakeQRCodes{}
	_ MaterialRequestRepository = fakeRequests{}
	_ IncidentRepository        = fakeIncidents{}
)

// memStore is an in-memory stand-in for the Postgres repositories. Each
// repository view below shares the same maps so cross-entity effects such
// as the employee mirror can be observed.
type memStore struct {
	mu            sync.Mutex
	clock         time.Time
	users         map[uuid.UUID]*models.User
	projects      map[uuid.UUID]*models.Project
	tasks         map[uuid.UUID]*models.Task
	taskOrder     []uuid.UUID
	materials     map[uuid.UUID]*models.Material
	cabinets      map[uuid.UUID]*models.ElectricalCabinet
	qrCodes       map[uuid.UUID]*models.QRCode
	verifications []*models.MaterialVerification
	requests      []*models.MaterialRequest
	incidents     []*models.IncidentReport
}

func newMemStore() *memStore {
	return &memStore{
		clock:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		users:     map[uuid.UUID]*models.User{},
		projects:  map[uuid.UUID]*models.Project{},
		tasks:     map[uuid.UUID]*models.Task{},
		materials: map[uuid.UUID]*models.Material{},
		cabinets:  map[uuid.UUID]*models.ElectricalCabinet{},
		qrCodes:   map[uuid.UUID]*models.QRCode{},
	}
}

// tick returns a strictly increasing timestamp so orderings are stable.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Projects = cloneIDs(u.Projects)
	return &c
}

func cloneProject(p *models.Project) *models.Project {
	c := *p
	c.Employees = cloneIDs(p.Employees)
	c.Tasks = cloneIDs(p.Tasks)
	return &c
}

func cloneCabinet(cab *models.ElectricalCabinet) *models.ElectricalCabinet {
	c := *cab
	c.Materials = make([]*models.CabinetMaterial, 0, len(cab.Materials))
	for _, m := range cab.Materials {
		line := *m
		c.Materials = append(c.Materials, &line)
	}
	c.MaintenanceHistory = make([]*models.MaintenanceEntry, 0, len(cab.MaintenanceHistory))
	for _, e := range cab.MaintenanceHistory {
		entry := *e
		c.MaintenanceHistory = append(c.MaintenanceHistory, &entry)
	}
	return &c
}

// ============================================================================
// Users
// ============================================================================

type fakeUsers struct{ s *memStore }

func (f fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneUser(u), nil
}

func (f fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, models.ErrNotFound
}

func (f fakeUsers) List(ctx context.Context, params models.ListUsersParams) ([]*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	all := make([]*models.User, 0, len(f.s.users))
	for _, u := range f.s.users {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool {
		if params.SortAsc {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if params.StartIndex >= len(all) {
		return []*models.User{}, nil
	}
	end := params.StartIndex + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[params.StartIndex:end], nil
}

func (f fakeUsers) Count(ctx context.Context) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return len(f.s.users), nil
}

func (f fakeUsers) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := 0
	for _, u := range f.s.users {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f fakeUsers) ListEmployees(ctx context.Context) ([]*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.User, 0)
	for _, u := range f.s.users {
		if !u.IsAdmin {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

func (f fakeUsers) CountByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := f.s.users[id]; ok {
			n++
		}
	}
	return n, nil
}

func (f fakeUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("%w: users_email_key", models.ErrConflict)
		}
	}
	c := cloneUser(user)
	c.ID = uuid.New()
	c.CreatedAt = f.s.tick()
	c.UpdatedAt = c.CreatedAt
	if c.ProfilePicture == "" {
		c.ProfilePicture = models.DefaultProfilePicture
	}
	if c.Projects == nil {
		c.Projects = []uuid.UUID{}
	}
	f.s.users[c.ID] = c
	return cloneUser(c), nil
}

func (f fakeUsers) UpdateProfile(ctx context.Context, user *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	stored, ok := f.s.users[user.ID]
	if !ok {
		return nil, models.ErrNotFound
	}
	for _, u := range f.s.users {
		if u.ID != user.ID && u.Email == user.Email {
			return nil, fmt.Errorf("%w: users_email_key", models.ErrConflict)
		}
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Email = user.Email
	stored.PhoneNumber = user.PhoneNumber
	stored.Role = user.Role
	stored.ProfilePicture = user.ProfilePicture
	stored.PasswordHash = user.PasswordHash
	stored.IsTemporaryPassword = user.IsTemporaryPassword
	return cloneUser(stored), nil
}

func (f fakeUsers) UpdateLoginState(ctx context.Context, id uuid.UUID, failedAttempts int, lockUntil *time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.FailedLoginAttempts = failedAttempts
	u.LockUntil = lockUntil
	return nil
}

func (f fakeUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, temporary bool, changedAt time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.IsTemporaryPassword = temporary
	u.PasswordChangedAt = &changedAt
	return nil
}

func (f fakeUsers) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.IsAdmin = isAdmin
	return cloneUser(u), nil
}

func (f fakeUsers) Delete(ctx context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.users[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.s.users, id)
	for _, t := range f.s.tasks {
		if t.EmployeeID != nil && *t.EmployeeID == id {
			t.EmployeeID = nil
		}
	}
	return nil
}

func (f fakeUsers) AddProjectToUsers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, id := range userIDs {
		u, ok := f.s.users[id]
		if !ok || containsID(u.Projects, projectID) {
			continue
		}
		u.Projects = append(u.Projects, projectID)
	}
	return nil
}

func (f fakeUsers) RemoveProjectFromUsers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, id := range userIDs {
		u, ok := f.s.users[id]
		if !ok {
			continue
		}
		u.Projects = removeID(u.Projects, projectID)
	}
	return nil
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

// ============================================================================
// Projects
// ============================================================================

type fakeProjects struct{ s *memStore }

func (f fakeProjects) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := cloneProject(p)
	c.ID = uuid.New()
	c.CreatedAt = f.s.tick()
	c.UpdatedAt = c.CreatedAt
	f.s.projects[c.ID] = c
	return cloneProject(c), nil
}

func (f fakeProjects) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneProject(p), nil
}

func (f fakeProjects) List(ctx context.Context) ([]*models.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.Project, 0, len(f.s.projects))
	for _, p := range f.s.projects {
		out = append(out, cloneProject(p))
	}
	return out, nil
}

func (f fakeProjects) Update(ctx context.Context, p *models.Project) (*models.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	stored, ok := f.s.projects[p.ID]
	if !ok {
		return nil, models.ErrNotFound
	}
	stored.Name = p.Name
	stored.Description = p.Description
	stored.Status = p.Status
	stored.StartDate = p.StartDate
	stored.EndDate = p.EndDate
	stored.Destination = p.Destination
	stored.Employees = cloneIDs(p.Employees)
	return cloneProject(stored), nil
}

func (f fakeProjects) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.projects[id]
	if !ok {
		return models.ErrNotFound
	}
	p.Status = status
	return nil
}

func (f fakeProjects) SetCabinet(ctx context.Context, id uuid.UUID, cabinetID *uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.projects[id]
	if !ok {
		return models.ErrNotFound
	}
	p.ElectricalCabinetID = cabinetID
	return nil
}

func (f fakeProjects) AppendTask(ctx context.Context, id, taskID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p, ok := f.s.projects[id]; ok && !containsID(p.Tasks, taskID) {
		p.Tasks = append(p.Tasks, taskID)
	}
	return nil
}

func (f fakeProjects) RemoveTask(ctx context.Context, id, taskID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p, ok := f.s.projects[id]; ok {
		p.Tasks = removeID(p.Tasks, taskID)
	}
	return nil
}

func (f fakeProjects) RemoveEmployee(ctx context.Context, userID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.projects {
		p.Employees = removeID(p.Employees, userID)
	}
	return nil
}

func (f fakeProjects) Delete(ctx context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.projects[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.s.projects, id)
	for taskID, t := range f.s.tasks {
		if t.ProjectID == id {
			delete(f.s.tasks, taskID)
		}
	}
	for cabID, c := range f.s.cabinets {
		if c.ProjectID == id {
			delete(f.s.cabinets, cabID)
		}
	}
	return nil
}

func (f fakeProjects) ListSummaries(ctx context.Context, ids []uuid.UUID) ([]*models.ProjectSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.ProjectSummary, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.s.projects[id]; ok {
			out = append(out, &models.ProjectSummary{
				ID: p.ID, Name: p.Name, Status: p.Status,
				StartDate: p.StartDate, EndDate: p.EndDate, Destination: p.Destination,
			})
		}
	}
	return out, nil
}

// ============================================================================
// Tasks
// ============================================================================

type fakeTasks struct{ s *memStore }

func (f fakeTasks) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := *t
	c.ID = uuid.New()
	c.CreatedAt = f.s.tick()
	c.UpdatedAt = c.CreatedAt
	f.s.tasks[c.ID] = &c
	f.s.taskOrder = append(f.s.taskOrder, c.ID)
	out := c
	return &out, nil
}

func (f fakeTasks) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (f fakeTasks) List(ctx context.Context) ([]*models.Task, error) {
	return f.listWhere(func(*models.Task) bool { return true }), nil
}

func (f fakeTasks) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	return f.listWhere(func(t *models.Task) bool { return t.ProjectID == projectID }), nil
}

func (f fakeTasks) listWhere(keep func(*models.Task) bool) []*models.Task {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.Task, 0)
	for _, id := range f.s.taskOrder {
		t, ok := f.s.tasks[id]
		if ok && keep(t) {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}

func (f fakeTasks) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.tasks[t.ID]; !ok {
		return nil, models.ErrNotFound
	}
	c := *t
	f.s.tasks[t.ID] = &c
	out := c
	return &out, nil
}

func (f fakeTasks) Delete(ctx context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.tasks[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.s.tasks, id)
	return nil
}

// ============================================================================
// Materials
// ============================================================================

type fakeMaterials struct{ s *memStore }

func (f fakeMaterials) Create(ctx context.Context, m *models.Material) (*models.Material, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.materials {
		if existing.Reference == m.Reference {
			return nil, fmt.Errorf("%w: materials_reference_key", models.ErrConflict)
		}
	}
	c := *m
	c.ID = uuid.New()
	c.CreatedAt = f.s.tick()
	c.UpdatedAt = c.CreatedAt
	f.s.materials[c.ID] = &c
	out := c
	return &out, nil
}

func (f fakeMaterials) GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m, ok := f.s.materials[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (f fakeMaterials) GetByReference(ctx context.Context, reference string) (*models.Material, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, m := range f.s.materials {
		if m.Reference == reference {
			c := *m
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f fakeMaterials) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Material, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.Material, 0, len(ids))
	for _, id := range ids {
		if m, ok := f.s.materials[id]; ok {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f fakeMaterials) List(ctx context.Context) ([]*models.Material, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.Material, 0, len(f.s.materials))
	for _, m := range f.s.materials {
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (f fakeMaterials) Update(ctx context.Context, m *models.Material) (*models.Material, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.materials[m.ID]; !ok {
		return nil, models.ErrNotFound
	}
	c := *m
	f.s.materials[m.ID] = &c
	out := c
	return &out, nil
}

func (f fakeMaterials) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MaterialStatus) (*models.Material, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m, ok := f.s.materials[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	m.Status = status
	c := *m
	return &c, nil
}

func (f fakeMaterials) Delete(ctx context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.materials[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.s.materials, id)
	for _, cab := range f.s.cabinets {
		kept := cab.Materials[:0]
		for _, line := range cab.Materials {
			if line.MaterialID != id {
				kept = append(kept, line)
			}
		}
		cab.Materials = kept
	}
	return nil
}

func (f fakeMaterials) detailsFor(cab *models.ElectricalCabinet) []*models.CabinetMaterialDetail {
	out := make([]*models.CabinetMaterialDetail, 0, len(cab.Materials))
	for _, line := range cab.Materials {
		m := f.s.materials[line.MaterialID]
		d := &models.CabinetMaterialDetail{CabinetMaterial: *line, CabinetID: cab.ID}
		if m != nil {
			d.Reference = m.Reference
			d.Designation = m.Designation
		}
		out = append(out, d)
	}
	return out
}

func (f fakeMaterials) ListByCabinet(ctx context.Context, cabinetID uuid.UUID) ([]*models.CabinetMaterialDetail, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cab, ok := f.s.cabinets[cabinetID]
	if !ok {
		return []*models.CabinetMaterialDetail{}, nil
	}
	return f.detailsFor(cab), nil
}

func (f fakeMaterials) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.CabinetMaterialDetail, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.CabinetMaterialDetail, 0)
	for _, cab := range f.s.cabinets {
		if cab.ProjectID == projectID {
			out = append(out, f.detailsFor(cab)...)
		}
	}
	return out, nil
}

// ============================================================================
// Cabinets and QR codes
// ============================================================================

type fakeCabinets struct{ s *memStore }

func (f fakeCabinets) Create(ctx context.Context, c *models.ElectricalCabinet) (*models.ElectricalCabinet, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	stored := cloneCabinet(c)
	stored.ID = uuid.New()
	stored.CreatedAt = f.s.tick()
	stored.UpdatedAt = stored.CreatedAt
	f.s.cabinets[stored.ID] = stored
	return cloneCabinet(stored), nil
}

func (f fakeCabinets) GetByID(ctx context.Context, id uuid.UUID) (*models.ElectricalCabinet, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.cabinets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneCabinet(c), nil
}

func (f fakeCabinets) List(ctx context.Context) ([]*models.ElectricalCabinet, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.ElectricalCabinet, 0, len(f.s.cabinets))
	for _, c := range f.s.cabinets {
		out = append(out, cloneCabinet(c))
	}
	return out, nil
}

func (f fakeCabinets) Update(ctx context.Context, c *models.ElectricalCabinet) (*models.ElectricalCabinet, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	stored, ok := f.s.cabinets[c.ID]
	if !ok {
		return nil, models.ErrNotFound
	}
	stored.Name = c.Name
	stored.Description = c.Description
	stored.Status = c.Status
	stored.InstallationDate = c.InstallationDate
	return cloneCabinet(stored), nil
}

func (f fakeCabinets) SetQRCode(ctx context.Context, id, qrCodeID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.cabinets[id]
	if !ok {
		return models.ErrNotFound
	}
	c.QRCodeID = &qrCodeID
	return nil
}

func (f fakeCabinets) ReplaceMaterials(ctx context.Context, id uuid.UUID, lines []models.MaterialAssignment) ([]*models.CabinetMaterial, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.cabinets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c.Materials = make([]*models.CabinetMaterial, 0, len(lines))
	for _, line := range lines {
		c.Materials = append(c.Materials, &models.CabinetMaterial{
			ID: uuid.New(), MaterialID: line.MaterialID, Quantity: line.Quantity,
		})
	}
	return cloneCabinet(c).Materials, nil
}

func (f fakeCabinets) UpdateMaterial(ctx context.Context, cabinetID, assignmentID uuid.UUID, patch models.CabinetMaterialPatch) (*models.CabinetMaterial, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.cabinets[cabinetID]
	if !ok {
		return nil, models.ErrNotFound
	}
	for _, line := range c.Materials {
		if line.ID != assignmentID {
			continue
		}
		if patch.Checked != nil {
			line.Checked = *patch.Checked
		}
		if patch.Missing != nil {
			line.Missing = *patch.Missing
		}
		out := *line
		return &out, nil
	}
	return nil, models.ErrNotFound
}

func (f fakeCabinets) AddMaintenance(ctx context.Context, cabinetID uuid.UUID, entry *models.MaintenanceEntry) (*models.MaintenanceEntry, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.cabinets[cabinetID]
	if !ok {
		return nil, models.ErrNotFound
	}
	stored := *entry
	stored.ID = uuid.New()
	c.MaintenanceHistory = append(c.MaintenanceHistory, &stored)
	out := stored
	return &out, nil
}

func (f fakeCabinets) AddVerification(ctx context.Context, v *models.MaterialVerification) (*models.MaterialVerification, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	stored := *v
	stored.ID = uuid.New()
	stored.CreatedAt = f.s.tick()
	f.s.verifications = append(f.s.verifications, &stored)
	out := stored
	return &out, nil
}

func (f fakeCabinets) ListVerifications(ctx context.Context, cabinetID uuid.UUID) ([]*models.MaterialVerification, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.MaterialVerification, 0)
	for _, v := range f.s.verifications {
		if v.CabinetID == cabinetID {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeQRCodes struct{ s *memStore }

func (f fakeQRCodes) Create(ctx context.Context, code *models.QRCode) (*models.QRCode, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.qrCodes {
		if existing.Code == code.Code {
			return nil, fmt.Errorf("%w: qr_codes_code_key", models.ErrConflict)
		}
	}
	c := *code
	c.ID = uuid.New()
	c.CreatedAt = f.s.tick()
	c.UpdatedAt = c.CreatedAt
	f.s.qrCodes[c.ID] = &c
	out := c
	return &out, nil
}

func (f fakeQRCodes) GetByID(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.qrCodes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (f fakeQRCodes) MarkScanned(ctx context.Context, id uuid.UUID, at time.Time) (*models.QRCode, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.qrCodes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c.LastScannedAt = &at
	out := *c
	return &out, nil
}

// ============================================================================
// Material requests and incidents
// ============================================================================

type fakeRequests struct{ s *memStore }

func (f fakeRequests) Create(ctx context.Context, req *models.MaterialRequest) (*models.MaterialRequest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := *req
	c.ID = uuid.New()
	c.CreatedAt = f.s.tick()
	c.UpdatedAt = c.CreatedAt
	f.s.requests = append(f.s.requests, &c)
	out := c
	return &out, nil
}

func (f fakeRequests) TotalRequested(ctx context.Context, materialID uuid.UUID) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	total := 0
	for _, r := range f.s.requests {
		if r.MaterialID == materialID &&
			(r.Status == models.MaterialRequestPending || r.Status == models.MaterialRequestApproved) {
			total += r.RequestedQuantity
		}
	}
	return total, nil
}

type fakeIncidents struct{ s *memStore }

func (f fakeIncidents) Create(ctx context.Context, inc *models.IncidentReport) (*models.IncidentReport, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := *inc
	c.ID = uuid.New()
	c.CreatedAt = f.s.tick()
	if c.Date.IsZero() {
		c.Date = c.CreatedAt
	}
	if c.Images == nil {
		c.Images = []string{}
	}
	f.s.incidents = append(f.s.incidents, &c)
	out := c
	return &out, nil
}

func (f fakeIncidents) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.IncidentReport, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*models.IncidentReport, 0)
	for _, inc := range f.s.incidents {
		if inc.ProjectID == projectID {
			c := *inc
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f fakeIncidents) UpdateStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus, notes string) (*models.IncidentReport, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, inc := range f.s.incidents {
		if inc.ID == id {
			inc.Status = status
			if notes != "" {
				inc.ResolutionNotes = notes
			}
			c := *inc
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

// ============================================================================
// Collaborators
// ============================================================================

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendTemporaryPasswordFunc func(ctx context.Context, email, firstName, password string) error
}

func (m *MockEmailService) SendTemporaryPassword(ctx context.Context, email, firstName, password string) error {
	if m.SendTemporaryPasswordFunc != nil {
		return m.SendTemporaryPasswordFunc(ctx, email, firstName, password)
	}
	return nil
}

// MockQREncoder implements QREncoder for testing
type MockQREncoder struct {
	EncodeFunc func(payload string) (string, error)
}

func (m *MockQREncoder) Encode(payload string) (string, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(payload)
	}
	return "data:image/png;base64,stub", nil
}

// seedUser stores a user directly, bypassing the service.
func (s *memStore) seedUser(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Projects == nil {
		u.Projects = []uuid.UUID{}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.tick()
	}
	stored := cloneUser(&u)
	s.users[u.ID] = stored
	return cloneUser(stored)
}

func (s *memStore) user(id uuid.UUID) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return cloneUser(u)
}

func (s *memStore) project(id uuid.UUID) *models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil
	}
	return cloneProject(p)
}
