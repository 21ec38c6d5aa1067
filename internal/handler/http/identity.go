package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// resolveUser maps the authenticated token identity to the internal user
// record, provisioning it on first sight. Returns false after writing the
// error response.
func resolveUser(w http.ResponseWriter, r *http.Request, users *service.UserService, logger *slog.Logger) (*domain.User, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), logger)
		return nil, false
	}

	user, err := users.GetOrCreateByClerkID(r.Context(), claims.UserID, claims.Email, claims.Name)
	if err != nil {
		httputil.WriteError(w, r, err, logger)
		return nil, false
	}
	return user, true
}
