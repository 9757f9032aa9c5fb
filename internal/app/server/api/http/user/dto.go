package user

import "timekeeper/internal/domain/user"

type registerInput struct {
	Body user.CredentialsRequest
}

type registerOutput struct {
	Body user.RegisterResponse
}

type loginInput struct {
	Body user.CredentialsRequest
}

type loginOutput struct {
	Body user.LoginResponse
}

type refreshInput struct {
	Body user.RefreshRequest
}

type refreshOutput struct {
	Body user.LoginResponse
}

type logoutInput struct {
	Body user.LogoutRequest
}

type logoutOutput struct {
	Body user.LogoutResponse
}
