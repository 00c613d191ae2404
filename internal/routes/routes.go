package routes

import (
	"log/slog"

	"github.com/BradenHooton/elecpower/internal/auth"
	"github.com/BradenHooton/elecpower/internal/handlers"
	"github.com/BradenHooton/elecpower/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth             *handlers.AuthHandler
	Users            *handlers.UserHandler
	Projects         *handlers.ProjectHandler
	Tasks            *handlers.TaskHandler
	Cabinets         *handlers.CabinetHandler
	Materials        *handlers.MaterialHandler
	MaterialRequests *handlers.MaterialRequestHandler
	Incidents        *handlers.IncidentHandler
	Health           *handlers.HealthHandler
}

// Limits configures the per-IP budget on signup/signin and the per-account
// budget on authenticated routes.
type Limits struct {
	Auth middleware.RateLimitConfig
	User middleware.RateLimitConfig
}

// DefaultLimits returns the default rate limits.
func DefaultLimits() Limits {
	return Limits{
		Auth: middleware.DefaultAuthRateLimit(),
		User: middleware.DefaultUserRateLimit(),
	}
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokenManager *auth.TokenManager,
	users auth.UserFetcher,
	limits Limits,
	logger *slog.Logger,
) {
	// Public routes - no authentication required
	router.Get("/health", h.Health.Health)
	router.With(middleware.RateLimitByIP(limits.Auth)).Post("/signup", h.Auth.Signup)
	router.With(middleware.RateLimitByIP(limits.Auth)).Post("/signin", h.Auth.Signin)
	router.Post("/signout", h.Auth.Signout)
	// Validates its own token to tell expired sessions from invalid ones.
	router.Patch("/change-password", h.Auth.ChangePassword)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokenManager))
		r.Use(middleware.TagCaller)
		r.Use(middleware.RateLimitByUser(limits.User))

		// Users
		r.Patch("/updateuser/{id}", h.Users.UpdateUser)
		r.Delete("/delete/{id}", h.Users.DeleteUser)
		r.Get("/getemployees", h.Users.ListEmployees)
		r.Get("/getuser/{id}", h.Users.GetUser)

		// Projects
		r.Post("/projects/create", h.Projects.CreateProject)
		r.Get("/projects/all", h.Projects.ListProjects)
		r.Get("/projects/{projectId}", h.Projects.GetProject)
		r.Patch("/projects/update/{projectId}", h.Projects.UpdateProject)
		r.Delete("/projects/delete/{projectId}", h.Projects.DeleteProject)

		// Tasks
		r.Post("/projects/{projectId}/createtask", h.Tasks.CreateTask)
		r.Get("/projects/{projectId}/tasks", h.Tasks.ListProjectTasks)
		r.Get("/tasks/all", h.Tasks.ListTasks)
		r.Get("/tasks/{id}", h.Tasks.GetTask)
		r.Patch("/tasks/update/{id}", h.Tasks.UpdateTask)
		r.Patch("/tasks/{id}/assign", h.Tasks.AssignTask)
		r.Patch("/tasks/{id}/self-assign", h.Tasks.SelfAssignTask)
		r.Delete("/tasks/delete/{id}", h.Tasks.DeleteTask)

		// Electrical cabinets and QR codes
		r.Post("/project/{projectId}/cabinet/create", h.Cabinets.CreateCabinet)
		r.Get("/cabinets/all", h.Cabinets.ListCabinets)
		r.Get("/projects/{projectId}/cabinet", h.Cabinets.GetProjectCabinet)
		r.Get("/cabinets/{id}", h.Cabinets.GetCabinet)
		r.Patch("/cabinets/update/{id}", h.Cabinets.UpdateCabinet)
		r.Patch("/{id}/assign-materials", h.Cabinets.AssignMaterials)
		r.Patch("/cabinets/{id}/materials/{materialId}", h.Cabinets.UpdateCabinetMaterial)
		r.Get("/cabinets/{id}/verifications", h.Cabinets.ListVerifications)
		r.Post("/cabinets/{id}/maintenance", h.Cabinets.AddMaintenance)
		r.Post("/generate-qr/{id}", h.Cabinets.GenerateQRCode)
		r.Post("/cabinets/{id}/scan", h.Cabinets.ScanCabinet)

		// Materials
		r.Post("/materials/create", h.Materials.CreateMaterial)
		r.Get("/materials/all", h.Materials.ListMaterials)
		r.Get("/materials/{id}", h.Materials.GetMaterial)
		r.Patch("/materials/update/{id}", h.Materials.UpdateMaterial)
		r.Patch("/materials/update-status/{id}", h.Materials.UpdateMaterialStatus)
		r.Delete("/materials/delete/{id}", h.Materials.DeleteMaterial)
		r.Get("/projects/{projectId}/materials", h.Materials.ListProjectMaterials)
		r.Get("/cabinets/{id}/materials", h.Materials.ListCabinetMaterials)

		// Material requests
		r.Post("/material-request", h.MaterialRequests.CreateRequest)
		r.Get("/material-requests/total/{materialId}", h.MaterialRequests.TotalRequested)

		// Incident reports
		r.Post("/projects/{projectId}/incidents", h.Incidents.ReportIncident)
		r.Get("/projects/{projectId}/incidents", h.Incidents.ListProjectIncidents)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(users, logger))
			r.Post("/createuser", h.Auth.CreateUser)
			r.Get("/getusers", h.Users.ListUsers)
			r.Patch("/update-role/{id}", h.Users.UpdateRole)
			r.Patch("/incidents/{id}/status", h.Incidents.UpdateIncidentStatus)
		})
	})
}
