package response

import "queuely/internal/models"

// SuccessResponse представляет успешный ответ API
type SuccessResponse struct {
	Message string `json:"message" example:"ok"`
}

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Machine-readable error code
	// example: VALIDATION_ERROR
	Code string `json:"code"`

	// Human-readable message
	// example: Invalid request body
	Message string `json:"message"`

	// Optional details
	// example: Key: 'JoinRequest.PartySize' Error:Field validation for 'PartySize' failed on the 'required' tag
	Details string `json:"details,omitempty"`
}

// TokenResponse представляет ответ с токенами авторизации
type TokenResponse struct {
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`
}

// ProviderResponse is the public view of a service provider
type ProviderResponse struct {
	ID       uint   `json:"id" example:"1"`
	Name     string `json:"name" example:"City Clinic"`
	Email    string `json:"email" example:"desk@clinic.example"`
	Location string `json:"location,omitempty" example:"Main St 1"`
}

// JoinResponse tells a party where it was placed
type JoinResponse struct {
	Message        string `json:"message" example:"joined"`
	PartyID        string `json:"party_id" example:"9b2f0c4e-5a1d-4c8e-9f00-3d2b7a6c1e55"`
	BlockID        string `json:"block_id" example:"K7Q2ZD-3"`
	Position       int    `json:"position" example:"2"`
	BlockOccupancy int    `json:"block_occupancy" example:"6"`
	BlockCapacity  int    `json:"block_capacity" example:"10"`
}

// DispatchResponse carries the dispatched block, or none when nothing was open
type DispatchResponse struct {
	Message string        `json:"message" example:"block dispatched"`
	Block   *models.Block `json:"block,omitempty"`
}

// QueueListResponse is one page of queues
type QueueListResponse struct {
	Queues []models.Queue `json:"queues"`
	Total  int            `json:"total" example:"12"`
	Limit  int            `json:"limit" example:"50"`
	Offset int            `json:"offset" example:"0"`
}

// DeleteProviderResponse reports how many queues went with the account
type DeleteProviderResponse struct {
	Message       string `json:"message" example:"provider deleted"`
	DeletedQueues int    `json:"deleted_queues" example:"3"`
}
