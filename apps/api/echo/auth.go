package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/user"
)

const (
	tokenContextKey = "userToken"
	audience        = "FitSenior"
)

var (
	errTokenNotProvided = echo.NewHTTPError(http.StatusUnauthorized, "token not provided")
	errTokenInvalid     = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

// Auth issues and checks the API tokens.
type Auth struct {
	appName       string
	secret        []byte
	expiration    time.Duration
	refreshWindow time.Duration
}

func NewAuth(conf *core.Config) *Auth {
	return &Auth{
		appName:       conf.AppName,
		secret:        []byte(conf.SecretKey),
		expiration:    conf.Server.JWTExpirationDelta,
		refreshWindow: conf.Server.JWTRefreshExpirationDelta,
	}
}

func (a *Auth) claims(usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.appName,
			Subject:   usr.ID,
			Audience:  audience,
			ExpiresAt: now.Add(a.expiration).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        usr.Email,
		IsAdmin:      usr.IsAdmin,
	}
}

// Token generates a signed JWT for usr. origIat keeps the issue time of the first token when refreshing.
func (a *Auth) Token(usr user.User, origIat ...int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, a.claims(usr, origIat...))
	ss, err := token.SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// Middleware authenticates requests by the token found with lookup (e.g. "header:Authorization", "query:token").
func (a *Auth) Middleware(lookup string) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    a.secret,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
		TokenLookup:   lookup,
		ErrorHandlerWithContext: func(err error, ctx echo.Context) error {
			if err == middleware.ErrJWTMissing {
				return errTokenNotProvided
			}
			return errTokenInvalid
		},
	})
}

// Refresh issues a new token if the user is still active and the refresh window of the original token is open.
func (a *Auth) Refresh(usr user.User, claims Claims) (string, error) {
	if !usr.IsActive {
		return "", errAccountDeactivated
	}
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.refreshWindow)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}
	return a.Token(usr, claims.OrigIssuedAt)
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errTokenNotProvided
}
