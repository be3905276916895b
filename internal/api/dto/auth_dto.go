package dto

// LoginRequest payload for POST /auth.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccessTokenResponse carries a freshly minted access token. The refresh
// token never appears in a body; it travels only in the httpOnly cookie.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse is a plain informational reply.
type MessageResponse struct {
	Message string `json:"message"`
}
