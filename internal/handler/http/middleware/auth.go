package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type employeeKey struct{}

// AuthRequired rejects requests without a verified access token and stores the caller's
// identity in the request context. It must run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, attendance.ErrUnauthenticated)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, attendance.ErrUnauthenticated)
				return
			}

			identity, ok := jwt.IdentityFromClaims(claims)
			if !ok {
				response.HandleError(w, attendance.ErrUnauthenticated)
				return
			}

			ctx := WithEmployee(r.Context(), attendance.Employee{
				ID:     identity.EmployeeID,
				Name:   identity.Name,
				Email:  identity.Email,
				Mobile: identity.Mobile,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

func WithEmployee(ctx context.Context, employee attendance.Employee) context.Context {
	return context.WithValue(ctx, employeeKey{}, employee)
}

// EmployeeFromContext returns the authenticated employee set by AuthRequired.
func EmployeeFromContext(ctx context.Context) (attendance.Employee, bool) {
	employee, ok := ctx.Value(employeeKey{}).(attendance.Employee)
	return employee, ok && employee.ID != ""
}
