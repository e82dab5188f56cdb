package dto

// CompanyLoginRequest represents a company requesting a one-time code
type CompanyLoginRequest struct {
	TaxNo string `json:"taxNo" binding:"required" example:"1234567890"`
}

// CompanyVerifyRequest represents a company submitting its one-time code
type CompanyVerifyRequest struct {
	TaxNo string `json:"taxNo" binding:"required" example:"1234567890"`
	Code  string `json:"code" binding:"required,len=6" example:"482913"`
}

// CompanySessionResponse carries the short-lived company session token
type CompanySessionResponse struct {
	SessionToken string `json:"sessionToken"`
	ExpiresIn    int    `json:"expiresIn" example:"1800"`
	CompanyID    int64  `json:"companyId" example:"3"`
	CompanyName  string `json:"companyName" example:"Acme Yazılım A.Ş."`
}
