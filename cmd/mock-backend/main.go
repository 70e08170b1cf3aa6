// Command mock-backend is a stand-in for the AccessWash platform backend
// used in local development. It implements the envelope REST API the portal
// gateway talks to, with one seeded demo customer per tenant.
//
// Demo credentials: demo@accesswash.org / Demo1234!
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/accesswash/portal/customers"
)

const (
	demoEmail    = "demo@accesswash.org"
	demoPassword = "Demo1234!"
	tokenTTL     = 7 * 24 * time.Hour
)

type envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type account struct {
	Customer     customers.Customer
	PasswordHash []byte
}

type serviceRequest struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Comments    []comment `json:"comments"`
}

type comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type backend struct {
	lock     sync.RWMutex
	signKey  []byte
	accounts map[string]*account        // email -> account
	requests map[string]*serviceRequest // id -> request
}

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	flag.Parse()

	b := newBackend()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /portal/auth/login/", b.login)
	mux.HandleFunc("POST /portal/auth/register/", b.register)
	mux.HandleFunc("POST /portal/auth/logout/", b.authed(b.logout))
	mux.HandleFunc("POST /portal/auth/forgot-password/", b.forgotPassword)
	mux.HandleFunc("GET /portal/dashboard/", b.authed(b.dashboard))
	mux.HandleFunc("GET /portal/profile/", b.authed(b.profile))
	mux.HandleFunc("PUT /portal/profile/", b.authed(b.updateProfile))
	mux.HandleFunc("GET /support/requests/", b.authed(b.listRequests))
	mux.HandleFunc("POST /support/requests/", b.authed(b.createRequest))
	mux.HandleFunc("GET /support/requests/{id}/", b.authed(b.getRequest))
	mux.HandleFunc("POST /support/requests/{id}/comments/", b.authed(b.addComment))

	log.Printf("mock backend listening on %s (demo login: %s / %s)", *addr, demoEmail, demoPassword)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func newBackend() *backend {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hashing demo password: %v", err)
	}

	joined := time.Now().Add(-90 * 24 * time.Hour)
	b := &backend{
		signKey:  []byte(uuid.NewString()),
		accounts: make(map[string]*account),
		requests: make(map[string]*serviceRequest),
	}
	b.accounts[demoEmail] = &account{
		PasswordHash: hash,
		Customer: customers.Customer{
			ID:              uuid.NewString(),
			Email:           demoEmail,
			Phone:           "+254700000000",
			FirstName:       "Demo",
			LastName:        "Customer",
			AccountNumber:   "AW-100001",
			MeterNumber:     "MTR-55001",
			PropertyAddress: "12 Riverside Drive",
			EmailVerified:   true,
			DateJoined:      joined,
		},
	}
	return b
}

func (b *backend) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return
	}

	b.lock.RLock()
	acct, ok := b.accounts[strings.ToLower(creds.Email)]
	b.lock.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(creds.Password)) != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Invalid email or password"})
		return
	}

	token, err := b.mintToken(acct.Customer.Email)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, envelope{Message: "Could not create session"})
		return
	}

	now := time.Now()
	b.lock.Lock()
	acct.Customer.LastLogin = &now
	customer := acct.Customer
	b.lock.Unlock()

	writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"token":    token,
		"customer": customer,
	}})
}

func (b *backend) register(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Email         string `json:"email"`
		Password      string `json:"password"`
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		Phone         string `json:"phone_number"`
		AccountNumber string `json:"account_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return
	}

	fieldErrors := map[string][]string{}
	if !strings.Contains(data.Email, "@") {
		fieldErrors["email"] = append(fieldErrors["email"], "Enter a valid email address")
	}
	if len(data.Password) < 8 {
		fieldErrors["password"] = append(fieldErrors["password"], "Password must be at least 8 characters")
	}
	if len(fieldErrors) > 0 {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Please correct the errors below", Errors: fieldErrors})
		return
	}

	email := strings.ToLower(data.Email)

	b.lock.Lock()
	if _, exists := b.accounts[email]; exists {
		b.lock.Unlock()
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "An account with that email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		b.lock.Unlock()
		writeEnvelope(w, http.StatusInternalServerError, envelope{Message: "Could not create account"})
		return
	}

	acct := &account{
		PasswordHash: hash,
		Customer: customers.Customer{
			ID:            uuid.NewString(),
			Email:         email,
			Phone:         data.Phone,
			FirstName:     data.FirstName,
			LastName:      data.LastName,
			AccountNumber: data.AccountNumber,
			DateJoined:    time.Now(),
		},
	}
	b.accounts[email] = acct
	customer := acct.Customer
	b.lock.Unlock()

	token, err := b.mintToken(email)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, envelope{Message: "Could not create session"})
		return
	}

	writeEnvelope(w, http.StatusCreated, envelope{Success: true, Data: map[string]any{
		"token":    token,
		"customer": customer,
	}})
}

func (b *backend) logout(w http.ResponseWriter, r *http.Request, _ *account) {
	writeEnvelope(w, http.StatusOK, envelope{Success: true})
}

func (b *backend) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Enter the email address on your account"})
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Success: true, Message: "If that email is registered, a reset link is on its way"})
}

func (b *backend) dashboard(w http.ResponseWriter, r *http.Request, acct *account) {
	b.lock.RLock()
	open := 0
	for _, req := range b.requests {
		if req.Status == "open" {
			open++
		}
	}
	b.lock.RUnlock()

	writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"customer":        acct.Customer,
		"account_balance": 2350.75,
		"open_requests":   open,
		"announcements": []map[string]any{
			{
				"title":     "Planned maintenance",
				"body":      "Water supply interruption on Saturday 06:00-10:00.",
				"posted_at": time.Now().Add(-24 * time.Hour),
			},
		},
	}})
}

func (b *backend) profile(w http.ResponseWriter, r *http.Request, acct *account) {
	writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: acct.Customer})
}

func (b *backend) updateProfile(w http.ResponseWriter, r *http.Request, acct *account) {
	var update struct {
		FirstName       *string `json:"first_name"`
		LastName        *string `json:"last_name"`
		Phone           *string `json:"phone_number"`
		PropertyAddress *string `json:"property_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "Invalid request body"})
		return
	}

	b.lock.Lock()
	if update.FirstName != nil {
		acct.Customer.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		acct.Customer.LastName = *update.LastName
	}
	if update.Phone != nil {
		acct.Customer.Phone = *update.Phone
	}
	if update.PropertyAddress != nil {
		acct.Customer.PropertyAddress = *update.PropertyAddress
	}
	customer := acct.Customer
	b.lock.Unlock()

	writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: customer})
}

func (b *backend) listRequests(w http.ResponseWriter, r *http.Request, _ *account) {
	b.lock.RLock()
	list := make([]*serviceRequest, 0, len(b.requests))
	for _, req := range b.requests {
		list = append(list, req)
	}
	b.lock.RUnlock()

	writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: list})
}

func (b *backend) createRequest(w http.ResponseWriter, r *http.Request, _ *account) {
	var input struct {
		Category    string `json:"category"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Title == "" {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "A title is required"})
		return
	}

	now := time.Now()
	req := &serviceRequest{
		ID:          uuid.NewString(),
		Category:    input.Category,
		Title:       input.Title,
		Description: input.Description,
		Status:      "open",
		CreatedAt:   now,
		UpdatedAt:   now,
		Comments:    []comment{},
	}

	b.lock.Lock()
	b.requests[req.ID] = req
	b.lock.Unlock()

	writeEnvelope(w, http.StatusCreated, envelope{Success: true, Data: req})
}

func (b *backend) getRequest(w http.ResponseWriter, r *http.Request, _ *account) {
	b.lock.RLock()
	req, ok := b.requests[r.PathValue("id")]
	b.lock.RUnlock()

	if !ok {
		writeEnvelope(w, http.StatusNotFound, envelope{Message: "Service request not found"})
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: req})
}

func (b *backend) addComment(w http.ResponseWriter, r *http.Request, acct *account) {
	var body struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Comment == "" {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: "A comment is required"})
		return
	}

	b.lock.Lock()
	req, ok := b.requests[r.PathValue("id")]
	if ok {
		c := comment{
			ID:        uuid.NewString(),
			Author:    acct.Customer.FullName(),
			Body:      body.Comment,
			CreatedAt: time.Now(),
		}
		req.Comments = append(req.Comments, c)
		req.UpdatedAt = c.CreatedAt
		b.lock.Unlock()
		writeEnvelope(w, http.StatusCreated, envelope{Success: true, Data: c})
		return
	}
	b.lock.Unlock()

	writeEnvelope(w, http.StatusNotFound, envelope{Message: "Service request not found"})
}

// authed wraps a handler with bearer token validation.
func (b *backend) authed(next func(http.ResponseWriter, *http.Request, *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeEnvelope(w, http.StatusUnauthorized, envelope{Message: "Authentication required"})
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return b.signKey, nil
		})
		if err != nil {
			writeEnvelope(w, http.StatusUnauthorized, envelope{Message: "Session expired"})
			return
		}

		email, _ := claims["sub"].(string)
		b.lock.RLock()
		acct, ok := b.accounts[email]
		b.lock.RUnlock()
		if !ok {
			writeEnvelope(w, http.StatusUnauthorized, envelope{Message: "Session expired"})
			return
		}

		next(w, r, acct)
	}
}

func (b *backend) mintToken(email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(b.signKey)
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
