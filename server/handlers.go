package server

import (
	"encoding/json"
	"net/http"

	"github.com/accesswash/portal"
	"github.com/accesswash/portal/internal/errors"
	"github.com/accesswash/portal/tenants"
)

// response mirrors the backend's envelope so portal pages consume one
// uniform shape end to end.
type response struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	resp := response{Message: portal.DefaultErrorMessage}

	var pErr *portal.Error
	if errors.As(err, &pErr) {
		resp.Message = pErr.Message
		resp.Errors = pErr.Fields
		if pErr.StatusCode != 0 {
			status = pErr.StatusCode
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func decodeBody(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return &portal.Error{Message: "Invalid request body.", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// finish writes the result of a portal call unless the client already
// redirected the browser to the login page.
func finish(w http.ResponseWriter, nav *redirectNavigator, data any, err error) {
	if nav.done {
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// HealthzHandler reports gateway liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// TenantInfoHandler returns branding metadata for the active tenant.
// Unknown tenants still resolve: the portal renders with the bare
// subdomain label as the display name.
func (s *Server) TenantInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := requestTenant(r)

		info := &tenants.Tenant{ID: tenantID, Name: tenantID}
		if s.tenantRepo != nil {
			if known, err := s.tenantRepo.Get(tenantID); err == nil {
				info = known
			}
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// LoginHandler authenticates the customer and persists the tenant session.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds portal.Credentials
		if err := decodeBody(r, &creds); err != nil {
			writeError(w, err)
			return
		}

		client, nav := s.portalClient(w, r, requestTenant(r))
		customer, err := client.Login(r.Context(), creds)
		finish(w, nav, customer, err)
	}
}

// RegisterHandler signs up a new customer; same session contract as login.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data portal.Registration
		if err := decodeBody(r, &data); err != nil {
			writeError(w, err)
			return
		}

		client, nav := s.portalClient(w, r, requestTenant(r))
		customer, err := client.Register(r.Context(), data)
		finish(w, nav, customer, err)
	}
}

// LogoutHandler clears the tenant session. It always succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, nav := s.portalClient(w, r, requestTenant(r))
		_ = client.Logout(r.Context())
		if nav.done {
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}
}

// ForgotPasswordHandler requests a password-reset email.
func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, err)
			return
		}

		client, nav := s.portalClient(w, r, requestTenant(r))
		err := client.ForgotPassword(r.Context(), body.Email)
		finish(w, nav, map[string]string{"message": "If that email is registered, a reset link is on its way."}, err)
	}
}

// SessionHandler reports the cached session state without a network call.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, _ := s.portalClient(w, r, requestTenant(r))
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": client.IsAuthenticated(),
			"customer":      client.CurrentCustomer(),
		})
	}
}

// DashboardHandler proxies the authenticated landing-page summary.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, nav := s.portalClient(w, r, requestTenant(r))
		dashboard, err := client.Dashboard(r.Context())
		finish(w, nav, dashboard, err)
	}
}

// ProfileHandler serves GET and PUT on the customer profile.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, nav := s.portalClient(w, r, requestTenant(r))

		if r.Method == http.MethodPut {
			var update portal.ProfileUpdate
			if err := decodeBody(r, &update); err != nil {
				writeError(w, err)
				return
			}
			customer, err := client.UpdateProfile(r.Context(), update)
			finish(w, nav, customer, err)
			return
		}

		customer, err := client.Profile(r.Context())
		finish(w, nav, customer, err)
	}
}

// ServiceRequestsHandler lists (GET) or opens (POST) support tickets.
func (s *Server) ServiceRequestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, nav := s.portalClient(w, r, requestTenant(r))

		if r.Method == http.MethodPost {
			var input portal.ServiceRequestInput
			if err := decodeBody(r, &input); err != nil {
				writeError(w, err)
				return
			}
			created, err := client.CreateServiceRequest(r.Context(), input)
			finish(w, nav, created, err)
			return
		}

		list, err := client.ServiceRequests(r.Context())
		finish(w, nav, list, err)
	}
}

// ServiceRequestHandler fetches one support ticket.
func (s *Server) ServiceRequestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, nav := s.portalClient(w, r, requestTenant(r))
		request, err := client.ServiceRequest(r.Context(), r.PathValue("id"))
		finish(w, nav, request, err)
	}
}

// AddCommentHandler appends a comment to a support ticket.
func (s *Server) AddCommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Comment string `json:"comment"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, err)
			return
		}

		client, nav := s.portalClient(w, r, requestTenant(r))
		comment, err := client.AddComment(r.Context(), r.PathValue("id"), body.Comment)
		finish(w, nav, comment, err)
	}
}
