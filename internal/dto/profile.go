package dto

// UpdateProfileRequest replaces the editable teacher profile fields.
type UpdateProfileRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=120"`
	Email          string   `json:"email" validate:"required,email"`
	Avatar         string   `json:"avatar" validate:"omitempty,url"`
	Bio            string   `json:"bio" validate:"max=2000"`
	Subjects       []string `json:"subjects" validate:"dive,required"`
	HourlyRate     float64  `json:"hourly_rate" validate:"gt=0"`
	Experience     string   `json:"experience"`
	Languages      []string `json:"languages"`
	Availability   []string `json:"availability"`
	Education      string   `json:"education"`
	Certifications []string `json:"certifications"`
	Phone          string   `json:"phone"`
	Location       string   `json:"location"`
}
