package controller

import (
	"errors"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"classcover_backend/internals/configs"
	"classcover_backend/internals/constants"
	"classcover_backend/internals/features/users/dto"
	"classcover_backend/internals/features/users/model"
	helper "classcover_backend/internals/helpers"
	"classcover_backend/internals/middlewares/auth"
)

const sessionTTL = 24 * time.Hour

type AuthController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validator: validator.New()}
}

// GoogleSignIn verifies the Google ID token and signs the user in. An invited
// user becomes active on first successful sign-in; unknown emails are
// rejected so only pre-provisioned staff can enter.
func (ctl *AuthController) GoogleSignIn(c *fiber.Ctx) error {
	var body dto.GoogleSignInDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	if err := ctl.Validator.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(body.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid Google ID token")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(body.IDToken)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Failed to decode ID token")
	}
	email := strings.ToLower(strings.TrimSpace(claimSet.Email))
	name, googleID := claimSet.Name, claimSet.Sub

	var user model.UserModel
	err = ctl.DB.WithContext(c.UserContext()).
		First(&user, "user_auth_id = ?", googleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First Google sign-in: attach the auth id to the invited account.
		err = ctl.DB.WithContext(c.UserContext()).
			First(&user, "user_email = ?", email).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusForbidden, "No account for this email; ask an admin to invite you")
		}
		if err != nil {
			return helper.FromFiberError(c, err)
		}
		user.UserAuthID = googleID
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.FromFiberError(c, err)
	}

	if user.UserStatus == constants.StatusDeactivated {
		return helper.Error(c, fiber.StatusForbidden, "Your account has been deactivated")
	}
	if user.UserStatus == constants.StatusInvited {
		user.UserStatus = constants.StatusActive
	}
	if user.UserName == "" && name != "" {
		user.UserName = name
	}
	if err := ctl.DB.WithContext(c.UserContext()).Save(&user).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	token, err := auth.IssueToken(&user, sessionTTL)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	setSessionCookie(c, token)
	return helper.Success(c, "Signed in", fiber.Map{
		"access_token": token,
		"user":         dto.FromModel(user),
	})
}

// Login is the password fallback for accounts provisioned with one.
func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var body dto.LoginDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	body.Normalize()
	if err := ctl.Validator.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	var user model.UserModel
	if err := ctl.DB.WithContext(c.UserContext()).
		First(&user, "user_email = ?", body.Email).Error; err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if user.UserPassword == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.UserPassword), []byte(body.Password)) != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if user.UserStatus == constants.StatusDeactivated {
		return helper.Error(c, fiber.StatusForbidden, "Your account has been deactivated")
	}

	token, err := auth.IssueToken(&user, sessionTTL)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	setSessionCookie(c, token)
	return helper.Success(c, "Signed in", fiber.Map{
		"access_token": token,
		"user":         dto.FromModel(user),
	})
}

func (ctl *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
	})
	return helper.Success(c, "Signed out", nil)
}

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
	})
}
