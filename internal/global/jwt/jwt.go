package jwt

import (
	"time"

	"project-portal/config"
	"project-portal/tools"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// Payload 写入 token 的用户信息，教师/学生身份随时可能变化，不放进 token
type Payload struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

type Claims struct {
	Payload
	jwt.StandardClaims
}

// ExpiresIn token 剩余有效期
func (c *Claims) ExpiresIn() time.Duration {
	return time.Until(time.Unix(c.ExpiresAt, 0))
}

func CreateToken(payload Payload) string {
	cfg := config.Get().JWT
	now := time.Now()
	claims := Claims{
		Payload: payload,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Duration(cfg.AccessExpire) * time.Second).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.AccessSecret))
	tools.PanicOnErr(err)
	return token
}

func ParseToken(token string) (*Claims, bool) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Get().JWT.AccessSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}
	return claims, true
}
