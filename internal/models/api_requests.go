package models

type PaimonImportRequest struct {
	Data string `json:"data" validate:"required"`
}

type CommentUpdate struct {
	Comment string `json:"comment" validate:"required,max=4096"`
}
