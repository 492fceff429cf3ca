package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"videohost/internal/domain/account"
)

// AccountStoreForRegister defines the store interface needed by RegisterAccount.
type AccountStoreForRegister interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// RegisterAccountInput carries input for the registration orchestrator.
type RegisterAccountInput struct {
	Email    string
	Password string
}

// RegisterAccountDeps holds dependencies for RegisterAccount.
type RegisterAccountDeps struct {
	AccountStore AccountStoreForRegister
	GenerateID   func() string
	Now          func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteRegisterAccount creates a new account with a hashed password.
// PRE: Valid email and password provided
// POST: Account created; ErrEmailAlreadyExists when the email is taken
// INVARIANT: Email must be unique
func ExecuteRegisterAccount(ctx context.Context, input RegisterAccountInput, deps RegisterAccountDeps) (account.Account, error) {
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return account.Account{}, ErrEmailAlreadyExists
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		CreatedAt: deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Account{}, err
	}

	slog.Info("auth_event", "event", "account_created", "email", input.Email)
	return acct, nil
}

// ExecuteSeedAdmin creates a default account if no accounts exist, so a fresh
// install has someone who can log in and upload.
// PRE: Database is initialized
// POST: Account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps RegisterAccountDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Accounts already exist, skip seeding
	}

	if _, err := ExecuteRegisterAccount(ctx, RegisterAccountInput{Email: email, Password: password}, deps); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}
