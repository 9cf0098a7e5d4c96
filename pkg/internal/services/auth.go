package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/spf13/viper"
)

func IssueToken(account models.Account) (string, error) {
	duration := time.Duration(viper.GetInt("security.token_duration")) * time.Second
	if duration <= 0 {
		duration = 7 * 24 * time.Hour
	}

	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", account.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})

	return tk.SignedString([]byte(viper.GetString("security.jwt_secret")))
}

func ParseToken(token string) (uint, error) {
	var claims jwt.RegisteredClaims
	out, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(viper.GetString("security.jwt_secret")), nil
	})
	if err != nil {
		return 0, err
	} else if !out.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	var id uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil {
		return 0, fmt.Errorf("malformed token subject: %v", err)
	}

	return id, nil
}
