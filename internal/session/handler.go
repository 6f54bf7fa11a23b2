package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bladehq/bladehub/internal/telemetry/tracing"
	"github.com/bladehq/bladehub/internal/upstream"
	"github.com/bladehq/bladehub/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type usersAPI interface {
	FindUserByEmail(ctx context.Context, email string) (*upstream.User, error)
	AddUser(ctx context.Context, user upstream.User) error
	UpdateUserSquad(ctx context.Context, email, squad string) error
}

type Handler struct {
	provider IdentityProvider
	service  *Service
	users    usersAPI
}

func NewHandler(provider IdentityProvider, service *Service, users usersAPI) *Handler {
	return &Handler{
		provider: provider,
		service:  service,
		users:    users,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("session-login")
	router.HandleFunc("/signup", handler.HandleSignup).Methods("POST", "OPTIONS").Name("session-signup")
	router.HandleFunc("/google", handler.HandleGoogleLogin).Methods("POST", "OPTIONS").Name("session-google")
	router.HandleFunc("/reset", handler.HandleReset).Methods("POST", "OPTIONS").Name("session-reset")
	router.HandleFunc("/logout", handler.HandleLogout).Methods("POST", "OPTIONS").Name("session-logout")
	router.HandleFunc("/me", handler.HandleMe).Methods("GET").Name("session-me")
}

func (handler *Handler) SetupProfileRoutes(router *mux.Router) {
	router.HandleFunc("", handler.HandleProfile).Methods("GET").Name("profile-get")
	router.HandleFunc("/squad", handler.HandleUpdateSquad).Methods("PUT", "OPTIONS").Name("profile-squad")
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.login")
	defer span.End()

	var creds credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}
	if creds.Email == "" || creds.Password == "" {
		http.Error(w, "error, email or password empty", http.StatusBadRequest)
		return
	}

	profile, err := handler.provider.SignInWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		handler.writeAuthError(w, "login", creds.Email, err)
		return
	}
	handler.finishLogin(ctx, w, profile)
}

func (handler *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.signup")
	defer span.End()

	var creds credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "signup failed", http.StatusBadRequest)
		return
	}
	if creds.Email == "" || creds.Password == "" {
		http.Error(w, "error, email or password empty", http.StatusBadRequest)
		return
	}

	profile, err := handler.provider.SignUpWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		handler.writeAuthError(w, "signup", creds.Email, err)
		return
	}
	handler.finishLogin(ctx, w, profile)
}

func (handler *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.google")
	defer span.End()

	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		http.Error(w, "error, id token empty", http.StatusBadRequest)
		return
	}

	profile, err := handler.provider.SignInWithFederatedToken(ctx, req.IDToken)
	if err != nil {
		handler.writeAuthError(w, "google login", "", err)
		return
	}
	handler.finishLogin(ctx, w, profile)
}

// finishLogin creates the session and makes sure the blade API knows
// the user, so a brand new signup can enter workouts right away.
func (handler *Handler) finishLogin(ctx context.Context, w http.ResponseWriter, profile Profile) {
	existing, err := handler.users.FindUserByEmail(ctx, profile.Email)
	if err != nil {
		log.Errorf("failed to look up user %s: %s", profile.Email, err)
	} else if existing == nil {
		if err := handler.users.AddUser(ctx, upstream.User{
			Email: profile.Email,
			Name:  profile.Name,
		}); err != nil {
			log.Errorf("failed to register user %s: %s", profile.Email, err)
		}
	}

	token, err := handler.service.Login(ctx, profile, time.Now())
	if err != nil {
		log.Errorf("failed to create session for %s: %s", profile.Email, err)
		http.Error(w, "error, failed to create session", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(loginResponse{Token: token, Profile: profile})
	if err != nil {
		log.Errorf("failed to marshal login response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.reset")
	defer span.End()

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}

	if err := handler.provider.SendPasswordReset(ctx, req.Email); err != nil {
		handler.writeAuthError(w, "password reset", req.Email, err)
		return
	}
	pkg.WriteTextResponseOK(w, "reset email sent")
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.logout")
	defer span.End()

	token := TokenFromRequest(r)
	if err := handler.service.Logout(ctx, token); err != nil {
		if errors.Is(err, ErrNoSession) {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}
		log.Errorf("failed to log out: %s", err)
		http.Error(w, "error, failed to log out", http.StatusInternalServerError)
		return
	}
	pkg.WriteTextResponseOK(w, "logged out")
}

func (handler *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.session.me")
	defer span.End()

	profile, err := handler.service.CurrentUser(ctx, TokenFromRequest(r))
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	profileJson, err := json.Marshal(profile)
	if err != nil {
		log.Errorf("failed to marshal profile: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, profileJson)
}

type profileResponse struct {
	Profile
	Squad string `json:"squad,omitempty"`
}

// HandleProfile joins the identity profile with the blade user record,
// mainly to expose the squad.
func (handler *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.get")
	defer span.End()

	profile, err := handler.service.CurrentUser(ctx, TokenFromRequest(r))
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	resp := profileResponse{Profile: profile}
	if user, err := handler.users.FindUserByEmail(ctx, profile.Email); err != nil {
		log.Errorf("failed to look up user %s: %s", profile.Email, err)
	} else if user != nil {
		resp.Squad = user.Squad
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal profile: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleUpdateSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.updateSquad")
	defer span.End()

	profile, err := handler.service.CurrentUser(ctx, TokenFromRequest(r))
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req struct {
		Squad string `json:"squad"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "update squad failed", http.StatusBadRequest)
		return
	}
	if !ValidSquad(req.Squad) {
		http.Error(w, "error, unknown squad", http.StatusBadRequest)
		return
	}

	if err := handler.users.UpdateUserSquad(ctx, profile.Email, req.Squad); err != nil {
		log.Errorf("failed to update squad for %s: %s", profile.Email, err)
		http.Error(w, "error, failed to update squad", http.StatusInternalServerError)
		return
	}
	pkg.WriteTextResponseOK(w, "squad updated")
}

func (handler *Handler) writeAuthError(w http.ResponseWriter, action, email string, err error) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		log.Tracef("%s failed for %q: %s", action, email, authErr.Code)
		http.Error(w, authErr.Error(), http.StatusUnauthorized)
		return
	}
	log.Errorf("%s failed for %q: %s", action, email, err)
	http.Error(w, "Authentication failed.", http.StatusInternalServerError)
}
