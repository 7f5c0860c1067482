package sandbox

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *user  `json:"user"`
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorRegistry.NewWithMessage(ErrBadRequest, "invalid login payload")
	}

	u := s.state.findUserByEmail(strings.TrimSpace(req.Email))
	if u == nil || !u.IsActive {
		return errorRegistry.New(ErrBadCredentials)
	}
	// Seeded passwordless accounts accept anything.
	if u.passwordHash != nil {
		if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)); err != nil {
			return errorRegistry.New(ErrBadCredentials)
		}
	}

	token, err := s.issueToken(u)
	if err != nil {
		return err
	}
	return c.JSON(loginResponse{Token: token, User: u})
}

func (s *Server) issueToken(u *user) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	})
	signed, err := t.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", errorRegistry.WrapWith(ErrToken, err)
	}
	return signed, nil
}

// requireAuth validates the bearer token and stashes the account in
// locals for downstream handlers.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return errorRegistry.New(ErrUnauthorized)
	}

	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errorRegistry.New(ErrUnauthorized)
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return errorRegistry.New(ErrUnauthorized)
	}

	cl := parsed.Claims.(*claims)
	u := s.state.findUserByEmail(cl.Email)
	if u == nil || !u.IsActive {
		return errorRegistry.New(ErrUnauthorized)
	}

	c.Locals("user", u)
	return c.Next()
}

func (s *Server) requireAdmin(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*user)
	if u == nil || u.Role != "admin" {
		return errorRegistry.New(ErrForbidden)
	}
	return c.Next()
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	return c.JSON(c.Locals("user"))
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	// Tokens are stateless; logout only exists so the client flow works.
	return c.JSON(fiber.Map{"success": true})
}
