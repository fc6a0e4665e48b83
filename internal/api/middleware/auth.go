package middleware

import (
	"errors"
	"fmt"
	"strings"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// MemberIDKey gin context 中已驗證成員 ID 的鍵
const MemberIDKey = "member_id"

// TokenVerifier 驗證 HS256 存取權杖，sub 為成員 ID
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier 創建權杖驗證器，issuer 為空時不檢查
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify 解析並驗證權杖，回傳成員 ID
func (v *TokenVerifier) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("token is empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// Auth Bearer 權杖驗證中間件
func Auth(verifier *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			abortWithError(c, common.ErrUnauthorized.WithMessage("missing bearer token"))
			return
		}

		memberID, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			common.LogWarn("Token rejected",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			abortWithError(c, common.ErrUnauthorized.WithMessage("invalid token"))
			return
		}

		c.Set(MemberIDKey, memberID)
		c.Next()
	}
}

// MemberID 取得已驗證的成員 ID，未驗證時為空字串
func MemberID(c *gin.Context) string {
	return c.GetString(MemberIDKey)
}
