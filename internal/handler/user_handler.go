package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"uchat/internal/app/db"
	"uchat/internal/app/user"
	"uchat/internal/pkg/auth/jwt"
	"uchat/internal/pkg/errs"
	"uchat/internal/pkg/logx"
	"uchat/internal/pkg/req"
	"uchat/internal/pkg/resp"
)

// UpdateUserRequest is the payload for the user update endpoint. All fields
// are optional; absent fields keep their current value.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Nickname *string `json:"nickname" validate:"omitempty,min=2,max=32"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, *errs.CustomError) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}
	return id, nil
}

// requireSelf ensures the request carries an identity token for the given
// user. Users may only modify their own account.
func requireSelf(r *http.Request, id int64) *errs.CustomError {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil {
		return errs.NewError(errs.ErrUnauthorized)
	}
	if payload.UserID != id {
		return errs.NewError(errs.ErrUnauthorized)
	}
	return nil
}

// HandleListUsers returns every registered user.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := deps.Directory.List(r.Context())
		if err != nil {
			logx.Error(err, "Failed to list users")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, "ok", users)
	}
}

// HandleGetUser returns a single user by nickname.
func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nickname := chi.URLParam(r, "nickname")
		if nickname == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		found, err := deps.Directory.GetByNickname(r.Context(), nickname)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "Failed to look up user by nickname")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, "ok", found)
	}
}

// HandleUpdateUser applies a partial update to the caller's own account.
func HandleUpdateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, idErr := pathID(r)
		if idErr != nil {
			resp.RespondError(w, r, idErr)
			return
		}

		if authErr := requireSelf(r, id); authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		var body UpdateUserRequest
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		if err := validate.Struct(body); err != nil {
			resp.RespondError(w, r, credentialError(err))
			return
		}

		params := user.UpdateParams{ID: id, Email: body.Email, Nickname: body.Nickname}
		if body.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				logx.Error(err, "Failed to hash password")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
				return
			}
			hashed := string(hash)
			params.PasswordHash = &hashed
		}

		updated, err := deps.Directory.Update(r.Context(), params)
		if err != nil {
			switch {
			case db.IsNotFound(err):
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			case db.IsUniqueViolation(err):
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
			default:
				logx.Error(err, "Failed to update user", "user_id", id)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			}
			return
		}

		logx.Info("User updated", "user_id", id)
		resp.RespondSuccess(w, r, "Account updated.", updated)
	}
}

// HandleDeleteUser removes the caller's own account.
func HandleDeleteUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, idErr := pathID(r)
		if idErr != nil {
			resp.RespondError(w, r, idErr)
			return
		}

		if authErr := requireSelf(r, id); authErr != nil {
			resp.RespondError(w, r, authErr)
			return
		}

		if err := deps.Directory.Delete(r.Context(), id); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "Failed to delete user", "user_id", id)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		logx.Info("User deleted", "user_id", id)
		resp.RespondSuccess(w, r, "Account deleted.", nil)
	}
}
