package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"uchat/internal/pkg/errs"
	"uchat/internal/pkg/logx"
	"uchat/internal/pkg/resp"
)

// HandleChatPage returns one page of chat history, newest first. Pages are
// numbered from 1.
func HandleChatPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			resp.RespondError(w, r, errs.NewError(errs.ErrPageInvalid))
			return
		}

		messages, err := deps.Store.ListPage(r.Context(), page)
		if err != nil {
			logx.Error(err, "Failed to load chat history page", "page", page)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, "ok", messages)
	}
}
