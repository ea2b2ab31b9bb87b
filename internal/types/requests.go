package types

import "github.com/go-playground/validator/v10"

// StartSessionRequest begins a new interview session.
type StartSessionRequest struct {
	UserID        string `json:"user_id" validate:"required,min=1"`
	Mode          Mode   `json:"mode" validate:"required,oneof=full practice"`
	PracticeRound string `json:"practice_round,omitempty"`
	Position      string `json:"position,omitempty"`
}

// AnswerRequest submits the candidate's answer to the current question.
type AnswerRequest struct {
	Answer string `json:"answer" validate:"required,min=1"`
}

// Validate validates the StartSessionRequest using the validator.
func (r *StartSessionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AnswerRequest using the validator.
func (r *AnswerRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
