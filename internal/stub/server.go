// Package stub is an in-process stand-in for the AgroFarm backend. It serves
// the same role-scoped REST contract the hosted deployment exposes — three
// structurally identical namespaces, one per role, irregular spellings
// included — which is enough for the CLI to run offline and for the SDK tests
// to exercise the full request pipeline.
package stub

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"agrofarm/internal/routes"
)

const tokenTTL = 24 * time.Hour

// tokenAliases maps each role to the JSON field its login response carries the
// token under. The deployed backends really do disagree on this; keeping the
// disagreement here exercises the client's ordered-candidate extraction.
var tokenAliases = map[routes.Role]string{
	routes.Farmer:   "token",
	routes.Buyer:    "accessToken",
	routes.Supplier: "jwt",
}

type account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	ImageURL string `json:"imgURL,omitempty"`

	password string
	verified bool
}

// Server holds the in-memory backend state.
type Server struct {
	mu         sync.Mutex
	log        *log.Logger
	signingKey []byte
	accounts   map[routes.Role]map[string]*account // keyed by email
	otps       map[string]string                   // email -> pending code
}

// New creates an empty stub backend. signingKey signs the HS256 tokens the
// login endpoints issue.
func New(log *log.Logger, signingKey []byte) *Server {
	accounts := make(map[routes.Role]map[string]*account, 3)
	for _, role := range routes.All() {
		accounts[role] = make(map[string]*account)
	}
	return &Server{
		log:        log,
		signingKey: signingKey,
		accounts:   accounts,
		otps:       make(map[string]string),
	}
}

// Router mounts the full contract under /api.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		for _, role := range routes.All() {
			role := role
			r.Route("/"+role.BasePath(), func(r chi.Router) {
				r.Post("/new", s.handleRegister(role))
				r.Post("/login", s.handleLogin(role))
				r.Get("/logout", s.requireAuth(role, s.handleLogout(role)))
				r.Post("/verify", s.handleVerify(role))
				r.Post("/resendOTP", s.handleResend(role))
				r.Get("/me", s.requireAuth(role, s.handleMe(role)))
				r.Put("/update", s.requireAuth(role, s.handleUpdate(role)))
				r.Delete("/delete", s.requireAuth(role, s.handleDelete(role)))
				r.Post("/forgot-password", s.handleForgot(role))
				r.Post("/reset-password", s.handleReset(role))
				r.Get("/all", s.handleAll(role))

				// Single source for the irregular farmer spelling: derive the
				// suffix from the route table rather than restating it.
				changePW := strings.TrimPrefix(routes.PathFor(role, routes.OpChangePassword), role.BasePath())
				r.Put(changePW, s.requireAuth(role, s.handleChangePassword(role)))
			})
		}
		r.Get("/farmers/farmer/{id}", s.handleVendorProfile(routes.Farmer))
		r.Get("/suppliers/supplier/{id}", s.handleVendorProfile(routes.Supplier))
	})
	return r
}

// PendingOTP exposes the code last emailed to an address. Test and CLI-demo
// helper; a real backend delivers this out of band.
func (s *Server) PendingOTP(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.otps[email]
}

// SeedVerified registers a pre-verified account directly, bypassing the OTP
// dance. Test helper.
func (s *Server) SeedVerified(role routes.Role, name, email, password, phone, address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[role][email] = &account{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Phone:    phone,
		Address:  address,
		password: password,
		verified: true,
	}
}

func (s *Server) handleRegister(role routes.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Phone    string `json:"phone"`
			Address  string `json:"address"`
			ImageURL string `json:"imgURL"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" || req.Phone == "" || req.Address == "" {
			writeError(w, http.StatusBadRequest, "name, email, password, phone and address are required")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if _, exists := s.accounts[role][req.Email]; exists {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		s.accounts[role][req.Email] = &account{
			ID:       uuid.NewString(),
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Address:  req.Address,
			ImageURL: req.ImageURL,
			password: req.Password,
		}
		code := s.issueOTP(req.Email)
		s.log.Printf("stub: verification code for %s is %s", req.Email, code)
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "registered, verify your email",
		})
	}
}

func (s *Server) handleLogin(role routes.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		acc, ok := s.accounts[role][req.Email]
		if !ok || acc.password != req.Password {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if !acc.verified {
			writeError(w, http.StatusForbidden, "account not verified")
			return
		}

		claims := jwt.MapClaims{
			"sub":   acc.ID,
			"email": acc.Email,
			"role":  role.String(),
			"iat":   time.Now().Unix(),
			"exp":   time.Now().Add(tokenTTL).Unix(),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "token signing failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			tokenAliases[role]: signed,
			"name":             acc.Name,
			"message":          "login successful",
		})
	}
}

func (s *Server) handleLogout(routes.Role) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, _ *account) {
		// Tokens are stateless here; logout succeeds so the client can clear
		// its local copy.
		writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
	}
}

func (s *Server) handleVerify(role routes.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			OTP   string `json:"otp"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		acc, ok := s.accounts[role][req.Email]
		if !ok {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		if code, ok := s.otps[req.Email]; !ok || code != req.OTP {
			writeError(w, http.StatusBadRequest, "invalid or expired OTP")
			return
		}
		delete(s.otps, req.Email)
		acc.verified = true
		writeJSON(w, http.StatusOK, map[string]any{"message": "email verified"})
	}
}

func (s *Server) handleResend(role routes.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.accounts[role][req.Email]; !ok {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		code := s.issueOTP(req.Email)
		s.log.Printf("stub: verification code for %s is %s", req.Email, code)
		writeJSON(w, http.StatusOK, map[string]any{"message": "OTP resent"})
	}
}

func (s *Server) handleForgot(role routes.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			Phone string `json:"phone"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		acc, ok := s.accounts[role][req.Email]
		if !ok || acc.Phone != req.Phone {
			writeError(w, http.StatusNotFound, "no account matches that email and phone")
			return
		}
		code := s.issueOTP(req.Email)
		s.log.Printf("stub: reset code for %s is %s", req.Email, code)
		writeJSON(w, http.StatusOK, map[string]any{"message": "reset code sent"})
	}
}

func (s *Server) handleReset(role routes.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email       string `json:"email"`
			Phone       string `json:"phone"`
			OTP         string `json:"otp"`
			NewPassword string `json:"newPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		acc, ok := s.accounts[role][req.Email]
		if !ok || acc.Phone != req.Phone {
			writeError(w, http.StatusNotFound, "no account matches that email and phone")
			return
		}
		if code, ok := s.otps[req.Email]; !ok || code != req.OTP {
			writeError(w, http.StatusBadRequest, "invalid or expired OTP")
			return
		}
		if req.NewPassword == "" {
			writeError(w, http.StatusBadRequest, "new password is required")
			return
		}
		delete(s.otps, req.Email)
		acc.password = req.NewPassword
		writeJSON(w, http.StatusOK, map[string]any{"message": "password reset"})
	}
}

func (s *Server) handleMe(routes.Role) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, acc *account) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      acc.ID,
			"name":    acc.Name,
			"email":   acc.Email,
			"phone":   acc.Phone,
			"address": acc.Address,
			"imgURL":  acc.ImageURL,
		})
	}
}

func (s *Server) handleUpdate(routes.Role) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, acc *account) {
		var req struct {
			Name     string `json:"name"`
			Phone    string `json:"phone"`
			Address  string `json:"address"`
			ImageURL string `json:"imgURL"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if req.Name != "" {
			acc.Name = req.Name
		}
		if req.Phone != "" {
			acc.Phone = req.Phone
		}
		if req.Address != "" {
			acc.Address = req.Address
		}
		if req.ImageURL != "" {
			acc.ImageURL = req.ImageURL
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "profile updated"})
	}
}

func (s *Server) handleDelete(role routes.Role) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, acc *account) {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.accounts[role], acc.Email)
		delete(s.otps, acc.Email)
		writeJSON(w, http.StatusOK, map[string]any{"message": "account deleted"})
	}
}

func (s *Server) handleChangePassword(routes.Role) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, r *http.Request, acc *account) {
		var req struct {
			OldPassword string `json:"oldPassword"`
			NewPassword string `json:"newPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if acc.password != req.OldPassword {
			writeError(w, http.StatusBadRequest, "old password does not match")
			return
		}
		if req.NewPassword == "" {
			writeError(w, http.StatusBadRequest, "new password is required")
			return
		}
		acc.password = req.NewPassword
		writeJSON(w, http.StatusOK, map[string]any{"message": "password changed"})
	}
}

func (s *Server) handleAll(role routes.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := make([]*account, 0, len(s.accounts[role]))
		for _, acc := range s.accounts[role] {
			list = append(list, acc)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count": len(list),
			"users": list,
		})
	}
}

func (s *Server) handleVendorProfile(role routes.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, acc := range s.accounts[role] {
			if acc.ID == id {
				writeJSON(w, http.StatusOK, map[string]any{
					"profile":  acc,
					"products": []any{},
				})
				return
			}
		}
		writeError(w, http.StatusNotFound, "profile not found")
	}
}

// requireAuth verifies the bearer token and resolves the account it belongs
// to before invoking next.
func (s *Server) requireAuth(role routes.Role, next func(http.ResponseWriter, *http.Request, *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.signingKey, nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		email, _ := claims["email"].(string)
		tokenRole, _ := claims["role"].(string)
		if tokenRole != role.String() {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		s.mu.Lock()
		acc, ok := s.accounts[role][email]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, acc)
	}
}

// issueOTP stores a fresh six-digit code for email. Caller holds the lock.
func (s *Server) issueOTP(email string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		// crypto/rand only fails when the platform is broken; a fixed code
		// keeps the stub usable regardless.
		n = big.NewInt(424242)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	s.otps[email] = code
	return code
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
