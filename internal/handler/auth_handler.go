package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"uchat/internal/app/db"
	"uchat/internal/app/user"
	"uchat/internal/pkg/auth/jwt"
	"uchat/internal/pkg/errs"
	"uchat/internal/pkg/logx"
	"uchat/internal/pkg/req"
	"uchat/internal/pkg/resp"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterRequest is the payload for the register endpoint.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Nickname string `json:"nickname" validate:"required,min=2,max=32"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the signed identity token and the user it belongs to.
type AuthResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// credentialError maps a failed validation on an auth request to the specific
// business error for the offending field.
func credentialError(err error) *errs.CustomError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Field() {
		case "Email":
			return errs.NewError(errs.ErrInvalidEmail)
		case "Nickname":
			return errs.NewError(errs.ErrInvalidNickname)
		case "Password":
			return errs.NewError(errs.ErrInvalidPassword)
		}
	}
	return errs.NewError(errs.ErrInvalidParams)
}

// issueToken signs an identity token for the given user.
func issueToken(u user.User, secretKey string) (string, error) {
	payload := &jwt.Payload{
		UserID:   u.ID,
		Nickname: u.Nickname,
		Avatar:   u.Avatar,
	}
	return jwt.GenerateToken(payload, secretKey, jwt.IdentityExpiration)
}

// HandleRegister creates a new user account and signs them in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.GetPayloadFromContext(r) != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var body RegisterRequest
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		if err := validate.Struct(body); err != nil {
			resp.RespondError(w, r, credentialError(err))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			logx.Error(err, "Failed to hash password")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		created, err := deps.Directory.Create(r.Context(), user.CreateParams{
			Email:        body.Email,
			Nickname:     body.Nickname,
			Avatar:       user.AvatarURL(body.Nickname),
			PasswordHash: string(hash),
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}
			logx.Error(err, "Failed to create user", "email", body.Email)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		token, err := issueToken(created, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "Failed to sign identity token", "user_id", created.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		logx.Info("User registered", "user_id", created.ID, "nickname", created.Nickname)
		resp.RespondSuccess(w, r, "Account created.", AuthResponse{Token: token, User: created})
	}
}

// HandleLogin verifies the credentials and issues a fresh identity token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.GetPayloadFromContext(r) != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var body LoginRequest
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		if err := validate.Struct(body); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		found, err := deps.Directory.GetByEmail(r.Context(), body.Email)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
				return
			}
			logx.Error(err, "Failed to look up user by email")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(body.Password)) != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		token, err := issueToken(found, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "Failed to sign identity token", "user_id", found.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		logx.Info("User signed in", "user_id", found.ID)
		resp.RespondSuccess(w, r, "Signed in.", AuthResponse{Token: token, User: found})
	}
}
