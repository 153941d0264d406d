package router

import (
	"net/http"

	"github.com/jwalitptl/booking-api/internal/authz"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/model"
)

// Route declares one API route, relative to /api/v1, together with what it
// guards and the roles expected to reach it.
type Route struct {
	Name       string
	Method     string
	Path       string
	Descriptor authz.Descriptor
	Roles      []model.Role
	// OwnerOrAdmin, when set, replaces the policy engine for this route.
	OwnerOrAdmin *middleware.OwnerOrAdminConfig
	// RateLimited routes count against the per-principal review limiter.
	RateLimited bool
}

var (
	everyone       = []model.Role{model.RoleAdmin, model.RoleDoctor, model.RolePatient}
	adminOnly      = []model.Role{model.RoleAdmin}
	doctorOnly     = []model.Role{model.RoleDoctor}
	patientOnly    = []model.Role{model.RolePatient}
	adminAndDoctor = []model.Role{model.RoleAdmin, model.RoleDoctor}
	adminOrPatient = []model.Role{model.RoleAdmin, model.RolePatient}
	doctorPatient  = []model.Role{model.RoleDoctor, model.RolePatient}
)

func guard(resource authz.ResourceType, action authz.Action, id authz.IDSource) authz.Descriptor {
	return authz.Descriptor{Resource: resource, Action: action, ID: id}
}

// DefaultRoutes is the booking API surface. actorHeader carries the id a
// caller claims to act as on owner-or-admin routes.
func DefaultRoutes(actorHeader string) []Route {
	byID := authz.FromParam("id")

	return []Route{
		// Hospitals
		{Name: "hospitals.list", Method: http.MethodGet, Path: "/hospitals",
			Descriptor: guard(authz.ResourceHospital, authz.ActionList, authz.NoID), Roles: everyone},
		{Name: "hospitals.create", Method: http.MethodPost, Path: "/hospitals",
			Descriptor: guard(authz.ResourceHospital, "", authz.NoID), Roles: adminOnly},
		{Name: "hospitals.get", Method: http.MethodGet, Path: "/hospitals/:id",
			Descriptor: guard(authz.ResourceHospital, "", byID), Roles: everyone},
		{Name: "hospitals.update", Method: http.MethodPut, Path: "/hospitals/:id",
			Descriptor: guard(authz.ResourceHospital, "", byID), Roles: adminOnly},
		{Name: "hospitals.delete", Method: http.MethodDelete, Path: "/hospitals/:id",
			Descriptor: guard(authz.ResourceHospital, "", byID), Roles: adminOnly},

		// Doctors
		{Name: "doctors.list", Method: http.MethodGet, Path: "/doctors",
			Descriptor: guard(authz.ResourceDoctor, authz.ActionList, authz.NoID), Roles: everyone},
		{Name: "doctors.create", Method: http.MethodPost, Path: "/doctors",
			Descriptor: guard(authz.ResourceDoctor, "", authz.NoID), Roles: adminOnly},
		{Name: "doctors.get", Method: http.MethodGet, Path: "/doctors/:id",
			Descriptor: guard(authz.ResourceDoctor, "", byID), Roles: everyone},
		{Name: "doctors.update", Method: http.MethodPut, Path: "/doctors/:id",
			Descriptor: guard(authz.ResourceDoctor, "", byID), Roles: adminAndDoctor},
		{Name: "doctors.delete", Method: http.MethodDelete, Path: "/doctors/:id",
			Descriptor: guard(authz.ResourceDoctor, "", byID), Roles: adminOnly},
		{Name: "doctors.upload", Method: http.MethodPost, Path: "/doctors/:id/documents",
			Descriptor: guard(authz.ResourceDoctor, authz.ActionUpload, byID), Roles: adminAndDoctor},
		{Name: "doctors.approve", Method: http.MethodPut, Path: "/doctors/:id/approve",
			Descriptor: guard(authz.ResourceDoctor, authz.ActionApprove, byID), Roles: adminOnly},

		// Appointments
		{Name: "appointments.list", Method: http.MethodGet, Path: "/appointments",
			Descriptor: guard(authz.ResourceAppointment, authz.ActionList, authz.NoID), Roles: everyone},
		{Name: "appointments.create", Method: http.MethodPost, Path: "/appointments",
			Descriptor: guard(authz.ResourceAppointment, "", authz.NoID), Roles: adminOrPatient},
		{Name: "appointments.get", Method: http.MethodGet, Path: "/appointments/:id",
			Descriptor: guard(authz.ResourceAppointment, "", byID), Roles: everyone},
		{Name: "appointments.update", Method: http.MethodPut, Path: "/appointments/:id",
			Descriptor: guard(authz.ResourceAppointment, "", byID), Roles: everyone},
		{Name: "appointments.cancel", Method: http.MethodDelete, Path: "/appointments/:id",
			Descriptor: guard(authz.ResourceAppointment, "", byID), Roles: adminOrPatient},
		{Name: "appointments.pay", Method: http.MethodPost, Path: "/payments",
			Descriptor: guard(authz.ResourceAppointment, authz.ActionProcessPayment, authz.FromBody("appointment_id")),
			Roles:      patientOnly},
		{Name: "appointments.qr.generate", Method: http.MethodPost, Path: "/appointments/:id/qr",
			Descriptor: guard(authz.ResourceQRCode, authz.ActionGenerate, byID), Roles: adminOrPatient},
		{Name: "appointments.qr.get", Method: http.MethodGet, Path: "/appointments/:id/qr",
			Descriptor: guard(authz.ResourceQRCode, "", byID), Roles: everyone},

		// Reviews
		{Name: "reviews.list", Method: http.MethodGet, Path: "/reviews",
			Descriptor: guard(authz.ResourceReview, authz.ActionList, authz.NoID), Roles: everyone},
		{Name: "reviews.create", Method: http.MethodPost, Path: "/reviews",
			Descriptor: guard(authz.ResourceReview, "", authz.NoID), Roles: patientOnly, RateLimited: true},
		{Name: "reviews.get", Method: http.MethodGet, Path: "/reviews/:id",
			Descriptor: guard(authz.ResourceReview, "", byID), Roles: everyone},
		{Name: "reviews.update", Method: http.MethodPut, Path: "/reviews/:id",
			Descriptor: guard(authz.ResourceReview, "", byID), Roles: patientOnly},
		{Name: "reviews.delete", Method: http.MethodDelete, Path: "/reviews/:id",
			Descriptor: guard(authz.ResourceReview, "", byID), Roles: adminOnly},
		{Name: "reviews.moderate", Method: http.MethodPut, Path: "/reviews/:id/moderate",
			Descriptor: guard(authz.ResourceReview, authz.ActionModerate, byID), Roles: adminOnly},

		// Patient notes
		{Name: "notes.get", Method: http.MethodGet, Path: "/patients/:patientId/notes",
			Descriptor: guard(authz.ResourcePatientNotes, "", authz.FromParam("patientId")), Roles: everyone},
		{Name: "notes.create", Method: http.MethodPost, Path: "/patients/:patientId/notes",
			Descriptor: guard(authz.ResourcePatientNotes, "", authz.FromParam("patientId")), Roles: doctorOnly},
		{Name: "notes.update", Method: http.MethodPut, Path: "/patients/:patientId/notes",
			Descriptor: guard(authz.ResourcePatientNotes, "", authz.FromParam("patientId")), Roles: doctorOnly},
		{Name: "notes.history", Method: http.MethodGet, Path: "/patients/:patientId/history",
			Descriptor: guard(authz.ResourcePatientNotes, authz.ActionReadByDoctor, authz.FromParam("patientId")),
			Roles:      doctorOnly},

		// Files are addressed by their owner
		{Name: "files.upload", Method: http.MethodPost, Path: "/files",
			Descriptor: guard(authz.ResourceFile, authz.ActionUpload, authz.NoID), Roles: everyone},
		{Name: "files.get", Method: http.MethodGet, Path: "/files/:ownerId/:fileId",
			Descriptor: guard(authz.ResourceFile, "", authz.FromParam("ownerId")), Roles: everyone},
		{Name: "files.delete", Method: http.MethodDelete, Path: "/files/:ownerId/:fileId",
			Descriptor: guard(authz.ResourceFile, "", authz.FromParam("ownerId")), Roles: everyone},

		// Favourites
		{Name: "favourites.list", Method: http.MethodGet, Path: "/favourites",
			Descriptor: guard(authz.ResourceFavourite, authz.ActionList, authz.NoID), Roles: adminOrPatient},
		{Name: "favourites.create", Method: http.MethodPost, Path: "/favourites",
			Descriptor: guard(authz.ResourceFavourite, "", authz.NoID), Roles: patientOnly},
		{Name: "favourites.delete", Method: http.MethodDelete, Path: "/favourites/:id",
			Descriptor: guard(authz.ResourceFavourite, "", byID), Roles: patientOnly},

		// Questions and answers
		{Name: "qa.list", Method: http.MethodGet, Path: "/qa",
			Descriptor: guard(authz.ResourceQA, authz.ActionList, authz.NoID), Roles: everyone},
		{Name: "qa.create", Method: http.MethodPost, Path: "/qa",
			Descriptor: guard(authz.ResourceQA, "", authz.NoID), Roles: doctorPatient},
		{Name: "qa.get", Method: http.MethodGet, Path: "/qa/:id",
			Descriptor: guard(authz.ResourceQA, "", byID), Roles: everyone},
		{Name: "qa.update", Method: http.MethodPut, Path: "/qa/:id",
			Descriptor: guard(authz.ResourceQA, "", byID), Roles: adminOnly},
		{Name: "qa.delete", Method: http.MethodDelete, Path: "/qa/:id",
			Descriptor: guard(authz.ResourceQA, "", byID), Roles: adminOnly},
		{Name: "qa.moderate", Method: http.MethodPut, Path: "/qa/:id/moderate",
			Descriptor: guard(authz.ResourceQA, authz.ActionModerate, byID), Roles: adminOnly},

		{Name: "search", Method: http.MethodGet, Path: "/search",
			Descriptor: guard(authz.ResourceSearch, "", authz.NoID), Roles: everyone},

		// Profiles
		{Name: "profile.get", Method: http.MethodGet, Path: "/profile/:userId",
			Descriptor: guard(authz.ResourceProfile, "", authz.FromParam("userId")), Roles: everyone},
		{Name: "profile.update", Method: http.MethodPut, Path: "/profile/:userId",
			Descriptor: guard(authz.ResourceProfile, "", authz.FromParam("userId")), Roles: everyone,
			OwnerOrAdmin: &middleware.OwnerOrAdminConfig{
				Resource: authz.FromParam("userId"),
				Claim:    authz.FromHeader(actorHeader),
			}},
		{Name: "profile.delete", Method: http.MethodDelete, Path: "/profile/:userId",
			Descriptor: guard(authz.ResourceProfile, "", authz.FromParam("userId")), Roles: adminOrPatient},

		// Platform administration
		{Name: "admin.list", Method: http.MethodGet, Path: "/admin/admins",
			Descriptor: guard(authz.ResourceAdmin, authz.ActionList, authz.NoID), Roles: adminOnly},
		{Name: "admin.create", Method: http.MethodPost, Path: "/admin/admins",
			Descriptor: guard(authz.ResourceAdmin, "", authz.NoID), Roles: adminOnly},
		{Name: "admin.get", Method: http.MethodGet, Path: "/admin/admins/:id",
			Descriptor: guard(authz.ResourceAdmin, "", byID), Roles: adminOnly},
		{Name: "admin.approve", Method: http.MethodPut, Path: "/admin/admins/:id/approve",
			Descriptor: guard(authz.ResourceAdmin, authz.ActionApprove, byID), Roles: adminOnly},
		{Name: "admin.delete", Method: http.MethodDelete, Path: "/admin/admins/:id",
			Descriptor: guard(authz.ResourceAdmin, "", byID), Roles: adminOnly},
	}
}

// Requirements lists what the policy table must cover for routes, skipping
// routes guarded by the owner-or-admin gate.
func Requirements(routes []Route) []authz.RouteRequirement {
	reqs := make([]authz.RouteRequirement, 0, len(routes))
	for _, r := range routes {
		if r.OwnerOrAdmin != nil {
			continue
		}
		reqs = append(reqs, authz.RouteRequirement{
			Method:     r.Method,
			Path:       r.Path,
			Descriptor: r.Descriptor,
			Roles:      r.Roles,
		})
	}
	return reqs
}
