// Package access decides which screen a request may land on. The gate is
// a pure function: enumerating (identity, screen) pairs covers it fully.
package access

import "soin-client/internal/models"

// Screen is the closed set of navigable screens.
type Screen string

const (
	// ScreenAuth is the unauthenticated entry screen (login/register).
	ScreenAuth             Screen = "auth"
	ScreenPatientDashboard Screen = "patient-dashboard"
	ScreenDoctorDashboard  Screen = "doctor-dashboard"
	ScreenAdminDashboard   Screen = "admin-dashboard"
)

// Action says what the caller should do with the requested screen.
type Action int

const (
	Render Action = iota
	Redirect
)

// Decision is the outcome of a gate check. Screen is the one to render
// when Action is Render, or the redirect target otherwise.
type Decision struct {
	Action Action
	Screen Screen
}

func render(s Screen) Decision   { return Decision{Action: Render, Screen: s} }
func redirect(s Screen) Decision { return Decision{Action: Redirect, Screen: s} }

// Decide evaluates the gate rules in order:
//  1. no identity: only the entry screen renders;
//  2. a logged-in identity at the entry screen goes to its dashboard;
//  3. a dashboard renders only for its own role, and the doctor
//     dashboard additionally requires an approved account.
//
// Authorization failures redirect silently; no error is reported.
func Decide(identity *models.Identity, requested Screen) Decision {
	if identity == nil {
		if requested == ScreenAuth {
			return render(ScreenAuth)
		}
		return redirect(ScreenAuth)
	}

	if requested == ScreenAuth {
		return redirect(DashboardFor(identity.Role))
	}

	switch requested {
	case ScreenPatientDashboard:
		if identity.Role == models.RolePatient {
			return render(requested)
		}
	case ScreenDoctorDashboard:
		if identity.IsApprovedDoctor() {
			return render(requested)
		}
	case ScreenAdminDashboard:
		if identity.Role == models.RoleAdmin {
			return render(requested)
		}
	}
	return redirect(ScreenAuth)
}

// DashboardFor maps a role to its home dashboard. Unknown roles fall
// back to the entry screen, keeping Decide total.
func DashboardFor(role models.Role) Screen {
	switch role {
	case models.RolePatient:
		return ScreenPatientDashboard
	case models.RoleDoctor:
		return ScreenDoctorDashboard
	case models.RoleAdmin:
		return ScreenAdminDashboard
	}
	return ScreenAuth
}
