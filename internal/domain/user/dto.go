package user

// Wire-DTO аутентификации. Живут в домене, потому что их разделяют
// обе стороны: сервер отдаёт их из HTTP-обработчиков, клиент
// разбирает в своём транспорте.

// CredentialsRequest - учетные данные аккаунта. SecretProof -
// детерминированный дайджест парольной фразы; сама фраза
// не покидает устройство.
type CredentialsRequest struct {
	Email       string `json:"email" maxLength:"254"`
	SecretProof string `json:"secret_proof" minLength:"64" maxLength:"64"`
	DeviceID    string `json:"device_id,omitempty" format:"uuid"`
}

type RegisterResponse struct {
	ID     int    `json:"user_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	DeviceID string `json:"device_id" format:"uuid"`
}

type LogoutResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
