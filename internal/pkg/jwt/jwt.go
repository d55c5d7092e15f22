package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Identity is the employee carried by an access token.
type Identity struct {
	EmployeeID string
	Name       string
	Email      string
	Mobile     string
}

type Service interface {
	GenerateAccessToken(identity Identity) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(identity Identity) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"employee_id": identity.EmployeeID,
		"name":        identity.Name,
		"email":       identity.Email,
		"type":        "access",
		"exp":         expiresAt,
	}
	if identity.Mobile != "" {
		claims["mobile"] = identity.Mobile
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// IdentityFromClaims reads the employee identity out of decoded token claims.
func IdentityFromClaims(claims map[string]interface{}) (Identity, bool) {
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return Identity{}, false
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	mobile, _ := claims["mobile"].(string)

	return Identity{
		EmployeeID: employeeID,
		Name:       name,
		Email:      email,
		Mobile:     mobile,
	}, true
}
