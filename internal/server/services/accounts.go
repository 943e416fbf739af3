package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/schedsync/internal/common"
	"github.com/dmitrijs2005/schedsync/internal/server/auth"
	"github.com/dmitrijs2005/schedsync/internal/server/models"
	"github.com/dmitrijs2005/schedsync/internal/server/repositories/repomanager"
)

var colorCodeRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// AccountService provisions accounts out of band (cmd/accounts).
type AccountService struct {
	repomanager repomanager.RepositoryManager
}

func NewAccountService(m repomanager.RepositoryManager) *AccountService {
	return &AccountService{repomanager: m}
}

// Create stores a new account with a bcrypt hash of password. colorCode is
// optional and must look like #rgb or #rrggbb.
func (s *AccountService) Create(ctx context.Context, username, password, colorCode string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if colorCode != "" && !colorCodeRe.MatchString(colorCode) {
		return nil, fmt.Errorf("%w: color code %q is not #rgb or #rrggbb", common.ErrorValidation, colorCode)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	account, err := s.repomanager.Accounts().Create(ctx, &models.Account{
		Username:     username,
		PasswordHash: hash,
		ColorCode:    colorCode,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return account, nil
}
