package service

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tutorflow_backend/internals/configs"
	authDTO "tutorflow_backend/internals/features/users/auth/dto"
	authModel "tutorflow_backend/internals/features/users/auth/model"
	profileModel "tutorflow_backend/internals/features/users/profiles/model"
	helper "tutorflow_backend/internals/helpers"
)

var validate = validator.New()

const accessTokenTTL = 24 * time.Hour

// ========================== REGISTER ==========================
// POST /api/auth/register
func Register(db *gorm.DB, c *fiber.Ctx) error {
	var input authDTO.RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var count int64
	if err := db.Model(&profileModel.ProfileModel{}).
		Where("profile_email = ?", email).
		Count(&count).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Erro ao consultar e-mail")
	}
	if count > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "E-mail já cadastrado")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao gerar hash da senha")
	}

	profile := profileModel.ProfileModel{
		ProfileFullName:     strings.TrimSpace(input.FullName),
		ProfileEmail:        email,
		ProfileRole:         input.Role,
		ProfilePhone:        strptr(input.Phone),
		ProfilePasswordHash: string(hash),
	}
	if err := db.Create(&profile).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao criar usuário")
	}

	return helper.JsonCreated(c, "Usuário registrado com sucesso", profile)
}

// ========================== LOGIN ==========================
// POST /api/auth/login
func Login(db *gorm.DB, c *fiber.Ctx) error {
	var input authDTO.LoginRequest
	if err := c.BodyParser(&input); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Formato de requisição inválido")
	}
	if err := validate.Struct(input); err != nil {
		return helper.JsonValidationError(c, err)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var profile profileModel.ProfileModel
	if err := db.Where("profile_email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "E-mail ou senha incorretos")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Erro ao consultar usuário")
	}
	if !profile.ProfileIsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Conta desativada")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.ProfilePasswordHash), []byte(input.Password)); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "E-mail ou senha incorretos")
	}

	token, err := issueAccessToken(&profile)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao gerar token")
	}

	// Cookie para clientes web; o header Authorization continua valendo.
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Expires:  time.Now().Add(accessTokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return helper.JsonOK(c, "Login realizado com sucesso", authDTO.AuthResponse{
		AccessToken: token,
		User:        profile,
	})
}

// ========================== LOGOUT ==========================
// POST /api/auth/logout: revoga o token atual via blacklist.
func Logout(db *gorm.DB, c *fiber.Ctx) error {
	raw := strings.TrimSpace(strings.TrimPrefix(c.Get("Authorization"), "Bearer "))
	if raw == "" {
		raw = strings.TrimSpace(c.Cookies("access_token"))
	}
	if raw == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "Token não informado")
	}

	expiredAt := time.Now().Add(accessTokenTTL)
	if tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{}); err == nil {
		if claims, ok := tok.Claims.(jwt.MapClaims); ok {
			if exp, ok := claims["exp"].(float64); ok {
				expiredAt = time.Unix(int64(exp), 0)
			}
		}
	}

	entry := authModel.TokenBlacklist{Token: raw, ExpiredAt: expiredAt}
	if err := db.Create(&entry).Error; err != nil {
		// Token já está na blacklist: logout idempotente.
		if !strings.Contains(strings.ToLower(err.Error()), "unique") {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Falha ao revogar token")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/",
	})

	return helper.JsonOK(c, "Logout realizado com sucesso", nil)
}

func issueAccessToken(p *profileModel.ProfileModel) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     p.ProfileID.String(),
		"user_id": p.ProfileID.String(),
		"role":    p.ProfileRole,
		"iat":     now.Unix(),
		"exp":     now.Add(accessTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(configs.JWTSecret))
}

func strptr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
