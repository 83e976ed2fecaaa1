package app

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/metinatakli/movie-booking-service/internal/domain"
)

// accessClaims is the payload of the bearer tokens issued by the auth
// service. Subject carries the numeric user id.
type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var errInvalidSubject = errors.New("token subject is not a user id")

func (app *Application) parseAccessToken(raw string) (domain.Requester, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if app.config.JWT.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(app.config.JWT.Issuer))
	}

	var claims accessClaims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(app.config.JWT.Secret), nil
	}, opts...)
	if err != nil {
		return domain.Requester{}, err
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID <= 0 {
		return domain.Requester{}, errInvalidSubject
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Requester{}, fmt.Errorf("invalid role claim: %w", err)
	}

	return domain.Requester{UserID: userID, Role: role}, nil
}
