package cmd

// Standard library on top, application and third-party packages below.
import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cblogserver/backend/internal/db"
	"github.com/cblogserver/backend/internal/metrics"
)

// Route binds one endpoint to a single parameterized query. Params name the
// path parameters bound, in order, to the query's placeholders.
type Route struct {
	Method  string
	Pattern string
	Query   string
	Params  []string
}

// BlogRoutes is the read-only blog API.
var BlogRoutes = []Route{
	{http.MethodGet, "/post/{postId}", db.SelectPostByID, []string{"postId"}},
	{http.MethodGet, "/post/tag/{tagId}", db.SelectPostIDsByTagID, []string{"tagId"}},
	{http.MethodGet, "/post/category/{categoryId}", db.SelectPostIDsByCategoryID, []string{"categoryId"}},
	{http.MethodGet, "/tags", db.SelectTagCounts, nil},
	{http.MethodGet, "/categories", db.SelectCategoryCounts, nil},
	{http.MethodGet, "/preview/{postId}", db.SelectPreviewsByPostID, []string{"postId"}},
	{http.MethodGet, "/all/previews", db.SelectAllPreviews, nil},
	{http.MethodGet, "/post/tags/{postId}", db.SelectTagCountsByPostID, []string{"postId"}},
	{http.MethodGet, "/post/categories/{postId}", db.SelectCategoriesByPostID, []string{"postId"}},
}

const blogPrefix = "/api/v1/blog"

func (s *Server) routes() {
	s.Router.Method(http.MethodGet, "/metrics", metrics.Handler(s.Registry))

	s.Router.Route(blogPrefix, func(r chi.Router) {
		for _, route := range BlogRoutes {
			r.Method(route.Method, route.Pattern, s.handleQuery(route))
		}
	})

	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, http.StatusNotFound, "not_found", "Resource not found", nil)
	})
}
