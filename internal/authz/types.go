package authz

// AuthorizeRequest — шаг 1: машина просит код авторизации.
type AuthorizeRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Scope        string `json:"scope"` // space-separated
}

type AuthorizeResponse struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expires_in"` // секунды
}

type VehicleInfo struct {
	VIN   string `json:"vin"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// TokenResponse — шаг 2: код обменян на access-токен.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"` // "Bearer"
	ExpiresIn   int         `json:"expires_in"`
	Scope       string      `json:"scope"`
	VehicleInfo VehicleInfo `json:"vehicle_info"`
}
