package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más la identidad del actor.
// StoreIDs lo envía el proveedor para supervisores (tiendas supervisadas);
// el resto de roles solo trae StoreID.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"user_id"`
	Name     string   `json:"name,omitempty"`
	Role     string   `json:"role"`
	StoreID  string   `json:"store_id,omitempty"`
	StoreIDs []string `json:"store_ids,omitempty"`
}

// Stores devuelve las tiendas del token sin duplicados: StoreIDs si viene, si no StoreID.
func (c *Claims) Stores() []string {
	src := c.StoreIDs
	if len(src) == 0 && c.StoreID != "" {
		src = []string{c.StoreID}
	}
	out := make([]string, 0, len(src))
	seen := make(map[string]struct{}, len(src))
	for _, id := range src {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Generate firma un token HS256 con los claims dados. Lo usan los tests y
// herramientas locales; en producción los tokens los emite el proveedor externo.
func Generate(secret, issuer string, claims Claims, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma, expiración y (si issuer no está vacío) el emisor.
func Parse(secret, issuer, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
