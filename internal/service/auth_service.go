package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Servicio que consulta al microservicio externo de autenticación.
// Las cuentas y los tokens viven allá; acá solo validamos.
type AuthService struct {
	authURL string
	client  *http.Client
}

type AuthUser struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
	Enabled     bool     `json:"enabled"`
}

func NewAuthService(authURL string) *AuthService {
	return &AuthService{
		authURL: authURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Verifica si el usuario tiene permiso de administrador.
func (a *AuthService) IsAdmin(user *AuthUser) bool {
	for _, perm := range user.Permissions {
		if perm == "admin" {
			return true
		}
	}
	return false
}

// Valida el token consultando /users/current del microservicio de auth.
func (a *AuthService) ValidateToken(ctx context.Context, token string) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/users/current", a.authURL), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("invalid token")
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}

	if !user.Enabled {
		return nil, errors.New("user disabled")
	}

	return &user, nil
}
