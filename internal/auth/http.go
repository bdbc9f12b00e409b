package auth

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

type Server struct {
	Log      *zap.Logger
	Users    UserStore
	Tokens   *TokenMaker
	Validate *validator.Validate

	// Optional per-IP limits on the credential endpoints.
	SigninLimit *kit.IPRateLimiter
	SignupLimit *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.With(limit(s.SignupLimit)...).Post("/signup", s.handleSignup)
	r.With(limit(s.SigninLimit)...).Post("/signin", s.handleSignin)
	r.With(Authenticate(s.Tokens, s.Users)).Get("/me", s.handleMe)

	return r
}

func limit(l *kit.IPRateLimiter) []func(http.Handler) http.Handler {
	if l == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{l.Middleware}
}

type signupReq struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if !kit.DecodeValid(w, r, s.Validate, &req) {
		return
	}

	u, err := s.Users.Create(req.Email, req.Password)
	if errors.Is(err, ErrEmailExists) {
		kit.WriteError(w, r, http.StatusConflict, "User exists already.", nil)
		return
	}
	if err != nil {
		s.Log.Error("create user", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.Log.Info("user signed up", zap.String("user_id", u.ID))
	kit.WriteMessage(w, http.StatusCreated, "User created successfully")
}

type signinReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleSignin accepts the OAuth2 password form (username/password) as well as JSON.
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinReq

	if isForm(r) {
		r.Body = http.MaxBytesReader(w, r.Body, kit.MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			kit.WriteError(w, r, http.StatusBadRequest, "bad form", map[string]any{"cause": err.Error()})
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		if !kit.Valid(w, r, s.Validate, &req) {
			return
		}
	} else if !kit.DecodeValid(w, r, s.Validate, &req) {
		return
	}

	u, err := s.Users.Verify(req.Email, req.Password)
	switch {
	case errors.Is(err, ErrUserNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "Wrong credentials.", nil)
		return
	case errors.Is(err, ErrInvalidCredentials):
		kit.WriteError(w, r, http.StatusUnauthorized, "Invalid details passed.", nil)
		return
	case err != nil:
		s.Log.Error("verify user", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	tok, err := s.Tokens.New(u)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, tokenResp{AccessToken: tok, TokenType: "Bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	email, _ := UserFromContext(r.Context())
	kit.WriteJSON(w, http.StatusOK, map[string]any{"email": email})
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}
