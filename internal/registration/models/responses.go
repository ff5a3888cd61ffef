package models

// RegisterResponse is returned with 201 on a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// CountResponse is returned by GET /users/count.
type CountResponse struct {
	Count int `json:"count"`
}

// RegisteredMessage accompanies every successful registration.
const RegisteredMessage = "User registered successfully"
