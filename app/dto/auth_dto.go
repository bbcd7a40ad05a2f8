package dto

// CaptchaResponse carries a rotate captcha challenge
type CaptchaResponse struct {
	CaptchaID   string `json:"captcha_id"`
	MasterImage string `json:"master_image"`
	ThumbImage  string `json:"thumb_image"`
}

// LoginRequest authenticates a CRM user by email and password
type LoginRequest struct {
	Email        string   `json:"email" validate:"required,email,max=255"`
	Password     string   `json:"password" validate:"required,min=1,max=128"`
	CaptchaID    string   `json:"captcha_id,omitempty" validate:"omitempty,max=64"`
	CaptchaAngle *float64 `json:"captcha_angle,omitempty"`
}

// LoginResponse returns the token pair with the authenticated user
type LoginResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int     `json:"expires_in"`
	User         UserDTO `json:"user"`
}

// RefreshTokenRequest exchanges a refresh token for a new pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RecaptchaVerifyRequest carries the browser reCAPTCHA token
type RecaptchaVerifyRequest struct {
	Token string `json:"token"`
}

// RecaptchaVerifyResponse mirrors the upstream verdict
type RecaptchaVerifyResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors,omitempty"`
}
