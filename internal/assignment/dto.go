package assignment

type createAssignmentRequest struct {
	TeacherID      int64 `json:"teacher_id" validate:"required,gt=0"`
	SubjectID      int64 `json:"subject_id" validate:"required,gt=0"`
	GradeLevelID   int64 `json:"grade_level_id" validate:"required,gt=0"`
	AcademicYearID int64 `json:"academic_year_id" validate:"required,gt=0"`
}

type grantQualificationRequest struct {
	TeacherID int64 `json:"teacher_id" validate:"required,gt=0"`
	SubjectID int64 `json:"subject_id" validate:"required,gt=0"`
}

type createAssignmentResponse struct {
	ID int64 `json:"id"`
}

type availableTeachersResponse struct {
	Slot     Slot    `json:"slot"`
	Teachers []int64 `json:"teachers"`
}

type slotHolderResponse struct {
	Slot     Slot        `json:"slot"`
	Occupied bool        `json:"occupied"`
	Holder   *Assignment `json:"holder,omitempty"`
}
