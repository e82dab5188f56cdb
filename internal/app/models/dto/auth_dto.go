package dto

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ogrenci@school.edu.tr"`
	Password string `json:"password" binding:"required" example:"Password123!"`
}

// RegisterRequest represents the student self-registration payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"ogrenci@school.edu.tr"`
	Password  string `json:"password" binding:"required,min=8" example:"Password123!"`
	FirstName string `json:"firstName" binding:"required,min=2,max=100" example:"Ayşe"`
	LastName  string `json:"lastName" binding:"required,min=2,max=100" example:"Yılmaz"`
	StudentNo string `json:"studentNo" binding:"required" example:"20201234"`
}

// TokenResponse represents an issued JWT pair
type TokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn" example:"3600"`
	User         UserResponse `json:"user"`
}
