package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/httpserver/deps"
)

type componentStatus struct {
	OK            bool     `json:"ok"`
	Driver        string   `json:"driver,omitempty"`
	CoursesLoaded *int     `json:"courses_loaded,omitempty"`
	BlocksLoaded  *int     `json:"blocks_loaded,omitempty"`
	Courses       []string `json:"courses,omitempty"`
	LastReload    string   `json:"last_reload,omitempty"`
	Impact        string   `json:"impact,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store and the content tree.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"content_tree": checkTree(d),
			"store":        checkStore(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	// Without a store nothing can be read or written
	if store, exists := components["store"]; exists && !store.OK {
		return "critical"
	}

	// Empty tree: reads work, new bookmarks fail with 404
	if tree, exists := components["content_tree"]; exists && !tree.OK {
		return "degraded"
	}

	return "operational"
}

func checkTree(d deps.Deps) componentStatus {
	courses := d.Tree.CourseCount()
	blocks := d.Tree.BlockCount()

	lastReload := "never"
	if t := d.Tree.GetLastReload(); !t.IsZero() {
		lastReload = t.Format("2006-01-02 15:04:05")
	}

	loaded := d.Tree.Courses()
	names := make([]string, 0, len(loaded))
	for _, c := range loaded {
		names = append(names, c.String())
	}

	status := componentStatus{
		OK:            courses > 0,
		CoursesLoaded: &courses,
		BlocksLoaded:  &blocks,
		Courses:       names,
		LastReload:    lastReload,
	}
	if courses == 0 {
		status.Impact = "bookmark-creation-disabled"
	}
	return status
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Driver: d.StoreDriver,
			Impact: "bookmarks-unavailable",
			Error:  err.Error(),
		}
	}
	return componentStatus{
		OK:     true,
		Driver: d.StoreDriver,
	}
}
