package controllers

import (
	"context"
	"strings"
	"time"

	ierr "invoicing-backend/errors"
	"invoicing-backend/logger"
	"invoicing-backend/middlewares"
	"invoicing-backend/models"
	"invoicing-backend/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TenantProvisioner creates and migrates the schema of a new tenant.
type TenantProvisioner interface {
	Provision(ctx context.Context, schema string) error
}

type AuthController struct {
	Users   repository.UserRepository
	Tokens  *middlewares.TokenIssuer
	Tenants TenantProvisioner
}

type registerRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Address         string `json:"address"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type onboardingRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Address   string `json:"address" validate:"required"`
}

func invalidCredentials() error {
	return ierr.NewError("invalid credentials").
		WithHint("Invalid credentials").
		Mark(ierr.ErrUnauthorized)
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":         user.Id,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"address":    user.Address,
		"email":      user.Email,
		"onboarded":  user.Onboarded(),
	}
}

// Register creates the user and its tenant schema, and signs the user in.
func (a *AuthController) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	email := strings.ToLower(req.Email)

	if _, err := a.Users.GetByEmail(ctx, email); err == nil {
		return ierr.NewError("email already registered").
			WithHint("email already exists").
			Mark(ierr.ErrAlreadyExists)
	} else if !ierr.IsNotFound(err) {
		return err
	}

	user := &models.User{
		Id:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		Email:     email,
	}
	user.SchemaName = models.TenantSchemaName(user.Id)
	if err := user.SetPassword(req.Password); err != nil {
		return ierr.WithError(err).
			WithMessage("hash password").
			Mark(ierr.ErrSystem)
	}

	if err := a.Tenants.Provision(ctx, user.SchemaName); err != nil {
		return ierr.WithError(err).
			WithHint("Could not migrate tenant schema").
			Mark(ierr.ErrDatabase)
	}
	if err := a.Users.Create(ctx, user); err != nil {
		return err
	}

	token, err := a.Tokens.Issue(user.Id, user.SchemaName)
	if err != nil {
		return err
	}

	logger.L.Infow("user registered", "user_id", user.Id, "schema", user.SchemaName)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  userResponse(user),
	})
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()

	user, err := a.Users.GetByEmail(ctx, strings.ToLower(req.Email))
	if ierr.IsNotFound(err) {
		return invalidCredentials()
	}
	if err != nil {
		return err
	}
	if err := user.ComparePassword(req.Password); err != nil {
		return invalidCredentials()
	}

	// tenants registered before a schema change catch up here
	if err := a.Tenants.Provision(ctx, user.SchemaName); err != nil {
		return ierr.WithError(err).
			WithHint("Could not migrate tenant schema").
			Mark(ierr.ErrDatabase)
	}

	token, err := a.Tokens.Issue(user.Id, user.SchemaName)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userResponse(user),
	})
}

func (a *AuthController) Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}

func (a *AuthController) Me(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := a.Users.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(userResponse(user))
}

// Onboard completes the profile printed in the From block of invoices.
func (a *AuthController) Onboard(c *fiber.Ctx) error {
	var req onboardingRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	if err := a.Users.UpdateProfile(ctx, &models.User{
		Id:        userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
	}); err != nil {
		return err
	}

	user, err := a.Users.Get(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(userResponse(user))
}
