package cvs

// PersonalInformation is the identity section of a CV. It is owned
// independently and referenced by the CV row via foreign key.
type PersonalInformation struct {
	ID           int64
	FullName     string
	CityName     string
	Email        string
	MobileNumber string
}

// CV is the root entity connecting personal and experience information.
type CV struct {
	ID                    int64
	Name                  string
	PersonalInformationID int64
}

// ExperienceInformation is one professional experience entry owned by a CV.
type ExperienceInformation struct {
	ID           int64
	CompanyName  string
	City         string
	CompanyField string
	CVID         int64
}

// Aggregate is a CV together with its personal information and experience
// rows, treated as one consistency unit. PersonalInformation is nil when the
// CV's foreign key does not resolve; the link is an application-level
// convention, not a storage constraint.
type Aggregate struct {
	CV                  CV
	PersonalInformation *PersonalInformation
	Experiences         []ExperienceInformation
}
