package server

import (
	"context"
	"net/http"
	"strings"

	"taskhub/internal/models"
	"taskhub/internal/service"
)

type authContextKey struct{}

// authPrincipal is the bearer-token holder of a request.
type authPrincipal struct {
	Token string
	User  *models.User
}

func contextWithAuthPrincipal(ctx context.Context, principal authPrincipal) context.Context {
	return context.WithValue(ctx, authContextKey{}, principal)
}

func authPrincipalFromContext(ctx context.Context) (authPrincipal, bool) {
	if ctx == nil {
		return authPrincipal{}, false
	}
	principal, ok := ctx.Value(authContextKey{}).(authPrincipal)
	return principal, ok
}

// withAuth resolves the bearer token and attaches the caller to the request
// context. Requests without a valid token proceed anonymously; each service
// operation decides whether that is allowed.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.svc.Auth.Authenticate(r.Context(), token)
		if err != nil {
			s.writeErrorReq(w, r, http.StatusInternalServerError, storeFailure(err))
			return
		}
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}

		if rw, ok := w.(*loggingResponseWriter); ok {
			rw.userID = user.ID
		}
		ctx := contextWithAuthPrincipal(r.Context(), authPrincipal{Token: token, User: user})
		ctx = service.WithActor(ctx, service.ActorFor(user))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
