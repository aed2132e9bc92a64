package membership

import "context"

// Operations the provider contract declares but this core leaves
// unimplemented. Each fails loudly with ErrNotImplemented so a consumer can
// tell "out of scope" apart from validation, not-found, and storage
// failures. If one of these is ever needed it requires independent design;
// paging, for instance, needs a stable sort key and cursor that the store
// contract does not specify.

// GetAllUsers would page through every login.
func (p *Provider) GetAllUsers(ctx context.Context, pageIndex, pageSize int) ([]*Login, int, error) {
	return nil, 0, ErrNotImplemented
}

// GetNumberOfUsersOnline would count logins active within the configured
// window.
func (p *Provider) GetNumberOfUsersOnline(ctx context.Context) (int, error) {
	return 0, ErrNotImplemented
}

// FindUsersByName would search logins by username pattern.
func (p *Provider) FindUsersByName(ctx context.Context, usernameToMatch string, pageIndex, pageSize int) ([]*Login, int, error) {
	return nil, 0, ErrNotImplemented
}

// FindUsersByEmail would search logins by email pattern.
func (p *Provider) FindUsersByEmail(ctx context.Context, emailToMatch string, pageIndex, pageSize int) ([]*Login, int, error) {
	return nil, 0, ErrNotImplemented
}

// ChangePassword would rotate a login's credential material.
func (p *Provider) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) (bool, error) {
	return false, ErrNotImplemented
}

// ChangePasswordQuestionAndAnswer would replace the secondary challenge.
func (p *Provider) ChangePasswordQuestionAndAnswer(ctx context.Context, username, password, newQuestion, newAnswer string) (bool, error) {
	return false, ErrNotImplemented
}

// GetPassword is unsupported by design: passwords are stored as one-way
// derivations and can never be retrieved.
func (p *Provider) GetPassword(ctx context.Context, username, answer string) (string, error) {
	return "", ErrNotImplemented
}

// ResetPassword would assign a generated password after verifying the
// secondary challenge.
func (p *Provider) ResetPassword(ctx context.Context, username, answer string) (string, error) {
	return "", ErrNotImplemented
}

// UpdateUser would persist arbitrary profile mutations.
func (p *Provider) UpdateUser(ctx context.Context, login *Login) error {
	return ErrNotImplemented
}
