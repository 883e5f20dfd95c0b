package cvs

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// PersonalInformationResponse is the outward-facing personal-information shape.
type PersonalInformationResponse struct {
	ID           int64  `json:"id"`
	FullName     string `json:"fullName"`
	CityName     string `json:"cityName,omitempty"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobileNumber"`
}

// ExperienceResponse is the outward-facing experience shape.
type ExperienceResponse struct {
	ID           int64  `json:"id"`
	CompanyName  string `json:"companyName"`
	City         string `json:"city,omitempty"`
	CompanyField string `json:"companyField,omitempty"`
	CVID         int64  `json:"cvId"`
}

// CVResponse is the outward-facing aggregate shape.
type CVResponse struct {
	ID                    int64                        `json:"id"`
	Name                  string                       `json:"name"`
	PersonalInformation   *PersonalInformationResponse `json:"personalInformation"`
	ExperienceInformation []ExperienceResponse         `json:"experienceInformation"`
}

// CreatePersonalInformationRequest carries the personal-information section
// of a create payload. Ids are assigned by storage.
type CreatePersonalInformationRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	CityName     string `json:"cityName"`
	Email        string `json:"email" binding:"omitempty,email"`
	MobileNumber string `json:"mobileNumber" binding:"required,number"`
}

// CreateExperienceRequest carries one experience entry of a create payload.
type CreateExperienceRequest struct {
	CompanyName  string `json:"companyName" binding:"required,max=20"`
	City         string `json:"city" binding:"max=50"`
	CompanyField string `json:"companyField" binding:"max=100"`
}

// CreateCVRequest is the POST /cv payload. At least one experience entry is
// required.
type CreateCVRequest struct {
	Name                  string                           `json:"name" binding:"required,max=100"`
	PersonalInformation   CreatePersonalInformationRequest `json:"personalInformation" binding:"required"`
	ExperienceInformation []CreateExperienceRequest        `json:"experienceInformation" binding:"required,min=1,dive"`
}

// UpdatePersonalInformationRequest carries the personal-information section
// of an update payload, including the id of the row to update.
type UpdatePersonalInformationRequest struct {
	ID           int64  `json:"id"`
	FullName     string `json:"fullName" binding:"required"`
	CityName     string `json:"cityName"`
	Email        string `json:"email" binding:"omitempty,email"`
	MobileNumber string `json:"mobileNumber" binding:"required,number"`
}

// UpdateExperienceRequest carries one experience entry of an update payload.
// An id of 0 means "insert new".
type UpdateExperienceRequest struct {
	ID           int64  `json:"id"`
	CompanyName  string `json:"companyName" binding:"required,max=20"`
	City         string `json:"city" binding:"max=50"`
	CompanyField string `json:"companyField" binding:"max=100"`
}

// UpdateCVRequest is the PUT /cv/:id payload. The experience list may be
// empty; entries omitted from it are removed from storage.
type UpdateCVRequest struct {
	ID                    int64                            `json:"id"`
	Name                  string                           `json:"name" binding:"required,max=100"`
	PersonalInformation   UpdatePersonalInformationRequest `json:"personalInformation" binding:"required"`
	ExperienceInformation []UpdateExperienceRequest        `json:"experienceInformation" binding:"dive"`
}

func toResponse(agg Aggregate) CVResponse {
	resp := CVResponse{
		ID:                    agg.CV.ID,
		Name:                  agg.CV.Name,
		ExperienceInformation: make([]ExperienceResponse, 0, len(agg.Experiences)),
	}
	if agg.PersonalInformation != nil {
		resp.PersonalInformation = &PersonalInformationResponse{
			ID:           agg.PersonalInformation.ID,
			FullName:     agg.PersonalInformation.FullName,
			CityName:     agg.PersonalInformation.CityName,
			Email:        agg.PersonalInformation.Email,
			MobileNumber: agg.PersonalInformation.MobileNumber,
		}
	}
	for _, exp := range agg.Experiences {
		resp.ExperienceInformation = append(resp.ExperienceInformation, ExperienceResponse{
			ID:           exp.ID,
			CompanyName:  exp.CompanyName,
			City:         exp.City,
			CompanyField: exp.CompanyField,
			CVID:         exp.CVID,
		})
	}
	return resp
}

func (r CreateCVRequest) personalInformation() PersonalInformation {
	return PersonalInformation{
		FullName:     r.PersonalInformation.FullName,
		CityName:     r.PersonalInformation.CityName,
		Email:        r.PersonalInformation.Email,
		MobileNumber: r.PersonalInformation.MobileNumber,
	}
}

func (r CreateCVRequest) experiences() []ExperienceInformation {
	out := make([]ExperienceInformation, 0, len(r.ExperienceInformation))
	for _, exp := range r.ExperienceInformation {
		out = append(out, ExperienceInformation{
			CompanyName:  exp.CompanyName,
			City:         exp.City,
			CompanyField: exp.CompanyField,
		})
	}
	return out
}

func (r UpdateCVRequest) personalInformation() PersonalInformation {
	return PersonalInformation{
		ID:           r.PersonalInformation.ID,
		FullName:     r.PersonalInformation.FullName,
		CityName:     r.PersonalInformation.CityName,
		Email:        r.PersonalInformation.Email,
		MobileNumber: r.PersonalInformation.MobileNumber,
	}
}

func (r UpdateCVRequest) experiences() []ExperienceInformation {
	out := make([]ExperienceInformation, 0, len(r.ExperienceInformation))
	for _, exp := range r.ExperienceInformation {
		out = append(out, ExperienceInformation{
			ID:           exp.ID,
			CompanyName:  exp.CompanyName,
			City:         exp.City,
			CompanyField: exp.CompanyField,
		})
	}
	return out
}

// validationDetails flattens validator errors into a field-to-message map
// for the error response body. Non-validator errors yield nil details.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("cannot exceed %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	case "email":
		return "must be a valid email address"
	case "number":
		return "must contain only digits"
	default:
		return "is invalid"
	}
}
