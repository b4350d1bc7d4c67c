package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/coursemark/internal/domain"
	"github.com/MrSnakeDoc/coursemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/coursemark/internal/httpserver/mw"
	"github.com/MrSnakeDoc/coursemark/internal/keys"
	"github.com/MrSnakeDoc/coursemark/internal/logger"
)

const maxBodyBytes = 64 << 10

type createBookmarkRequest struct {
	UsageID  string `json:"usage_id"`
	CourseID string `json:"course_id,omitempty"`
}

type bookmarkResponse struct {
	ID          string            `json:"id"`
	CourseID    string            `json:"course_id"`
	UsageID     string            `json:"usage_id"`
	DisplayName string            `json:"display_name"`
	Path        []domain.PathItem `json:"path"`
	Created     time.Time         `json:"created"`
	Modified    time.Time         `json:"modified"`
}

type bookmarkListResponse struct {
	Count   int                `json:"count"`
	Results []bookmarkResponse `json:"results"`
}

func toResponse(b *domain.Bookmark) (bookmarkResponse, error) {
	path, err := b.Path()
	if err != nil {
		return bookmarkResponse{}, err
	}
	return bookmarkResponse{
		ID:          b.ID,
		CourseID:    b.CourseKey.String(),
		UsageID:     b.BlockKey.String(),
		DisplayName: b.DisplayName,
		Path:        path,
		Created:     b.CreatedAt,
		Modified:    b.ModifiedAt,
	}, nil
}

// CreateBookmark bookmarks a block for the calling user.
// 201 when a row was inserted, 200 when an identical bookmark existed.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, _ := mw.UserFromContext(r.Context())

		var req createBookmarkRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.UsageID == "" {
			writeError(w, http.StatusBadRequest, "usage_id is required")
			return
		}

		usage, err := keys.ParseUsageKey(req.UsageID)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		course := usage.CourseKey()
		if req.CourseID != "" {
			given, err := keys.ParseCourseKey(req.CourseID)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if given != course {
				writeError(w, http.StatusBadRequest, "usage_id does not belong to course_id")
				return
			}
		}

		b, created, err := d.Bookmarks.Create(r.Context(), domain.CreateInput{
			Owner:     owner,
			CourseKey: course,
			BlockKey:  usage,
		}, nil)
		switch {
		case errors.Is(err, domain.ErrBlockNotFound):
			writeError(w, http.StatusNotFound, "block not found: "+usage.String())
			return
		case err != nil:
			d.Logger.Error("failed to create bookmark",
				logger.String("owner", owner),
				logger.String("usage_id", usage.String()),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to create bookmark")
			return
		}

		resp, err := toResponse(b)
		if err != nil {
			d.Logger.Error("failed to render bookmark", logger.String("id", b.ID), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to render bookmark")
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
			d.Logger.Info("bookmark created",
				logger.String("id", b.ID),
				logger.String("owner", owner),
				logger.String("usage_id", usage.String()))
		}
		writeJSON(w, status, resp)
	}
}

// ListBookmarks returns the caller's bookmarks, optionally for one course.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, _ := mw.UserFromContext(r.Context())

		var course keys.CourseKey
		if raw := r.URL.Query().Get("course_id"); raw != "" {
			var err error
			if course, err = keys.ParseCourseKey(raw); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		list, err := d.Bookmarks.List(r.Context(), owner, course)
		if err != nil {
			d.Logger.Error("failed to list bookmarks", logger.String("owner", owner), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list bookmarks")
			return
		}

		out := bookmarkListResponse{Count: len(list), Results: make([]bookmarkResponse, 0, len(list))}
		for _, b := range list {
			resp, err := toResponse(b)
			if err != nil {
				d.Logger.Warn("skipping bookmark with unreadable path",
					logger.String("id", b.ID),
					logger.Error(err))
				out.Count--
				continue
			}
			out.Results = append(out.Results, resp)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetBookmark returns one of the caller's bookmarks.
// Bookmarks of other users are reported as missing.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, _ := mw.UserFromContext(r.Context())
		id := chi.URLParam(r, "id")

		b, err := d.Bookmarks.Get(r.Context(), id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "bookmark not found")
			return
		case err != nil:
			d.Logger.Error("failed to get bookmark", logger.String("id", id), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to get bookmark")
			return
		}
		if b.Owner != owner {
			writeError(w, http.StatusNotFound, "bookmark not found")
			return
		}

		resp, err := toResponse(b)
		if err != nil {
			d.Logger.Error("failed to render bookmark", logger.String("id", b.ID), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to render bookmark")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
