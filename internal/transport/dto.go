package transport

import "strings"

type ProductInput struct {
	Title       string `form:"title"       json:"title"       validate:"required,min=3"         msg:"Title must have at least 3 characters"`
	Price       string `form:"price"       json:"price"       validate:"required,price"         msg:"Price must have two decimal places"`
	Description string `form:"description" json:"description" validate:"required,min=5,max=200" msg:"Description must be min 5 characters and max 200 characters"`
}

func (in *ProductInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Price = strings.TrimSpace(in.Price)
	in.Description = strings.TrimSpace(in.Description)
}

type EditProductRequest struct {
	ProductID string `form:"productId" json:"productId"`
	ProductInput
}

type CartRequest struct {
	ProductID string `form:"productId" json:"productId"`
}

type SignupRequest struct {
	Email           string `form:"email"           json:"email"           validate:"required,email"             msg:"Please enter a valid email."`
	Password        string `form:"password"        json:"password"        validate:"required,min=5,alphanum"    msg:"Password must be 5 characters long and alphanumeric."`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"eqfield=Password"           msg:"Passwords do not match."`
}

func (r *SignupRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Password = strings.TrimSpace(r.Password)
	r.ConfirmPassword = strings.TrimSpace(r.ConfirmPassword)
}

type LoginRequest struct {
	Email    string `form:"email"    json:"email"    validate:"required,email"          msg:"Please enter a valid email."`
	Password string `form:"password" json:"password" validate:"required,min=5,alphanum" msg:"Password must be 5 characters long and alphanumeric."`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Password = strings.TrimSpace(r.Password)
}

type ResetRequest struct {
	Email string `form:"email" json:"email"`
}

type NewPasswordRequest struct {
	UserID        string `form:"userId"        json:"userId"`
	PasswordToken string `form:"passwordToken" json:"passwordToken"`
	Password      string `form:"password"      json:"password"      validate:"required,min=5,alphanum" msg:"Password must be 5 characters long and alphanumeric."`
}
