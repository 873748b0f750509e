package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/knitlab/skein/internal/db"
	"github.com/knitlab/skein/internal/errors"
)

// CreateProjectInput contains parameters for the CreateProject operation.
type CreateProjectInput struct {
	Name      string  // required
	Craft     string  // default: "knitting"
	NotesMD   *string // optional markdown notes
	TotalRows int     // project length in rows (0 = unknown)
}

// CreateProjectOutput contains the result of the CreateProject operation.
type CreateProjectOutput struct {
	Project db.Project `json:"project"`
	Counter db.Counter `json:"counter"` // the primary row counter, created alongside
}

// CreateProject stores a new project together with its primary row counter.
func CreateProject(database *sql.DB, input CreateProjectInput) (*CreateProjectOutput, error) {
	nameNorm := Normalize(input.Name)
	if nameNorm == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}
	if input.TotalRows < 0 {
		return nil, errors.NewInvalidRequest("total_rows must not be negative")
	}

	craft := strings.TrimSpace(input.Craft)
	if craft == "" {
		craft = "knitting"
	}

	projectID, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	counterID, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	project := db.Project{
		ID:        projectID,
		NameRaw:   input.Name,
		NameNorm:  nameNorm,
		Craft:     craft,
		NotesMD:   input.NotesMD,
		TotalRows: input.TotalRows,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.InsertProject(database, &project); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(input.Name)
		}
		return nil, err
	}

	counter := db.Counter{
		ID:        counterID,
		ProjectID: projectID,
		Label:     "rows",
		IsPrimary: true,
		UpdatedAt: now,
	}
	if err := db.InsertCounter(database, &counter); err != nil {
		return nil, err
	}

	return &CreateProjectOutput{Project: project, Counter: counter}, nil
}

// GetProjectInput contains parameters for the GetProject operation.
type GetProjectInput struct {
	ID   string // by id, or
	Name string // by (normalized) name
}

// GetProjectOutput contains the result of the GetProject operation.
type GetProjectOutput struct {
	Project  db.Project   `json:"project"`
	Counters []db.Counter `json:"counters"`
}

// GetProject retrieves a project with its counters, by id or by name.
func GetProject(database *sql.DB, input GetProjectInput) (*GetProjectOutput, error) {
	var project *db.Project
	var err error

	switch {
	case input.ID != "":
		project, err = db.GetProject(database, input.ID)
	case input.Name != "":
		project, err = db.GetProjectByName(database, Normalize(input.Name))
	default:
		return nil, errors.NewInvalidRequest("must specify either id or name")
	}
	if err != nil {
		return nil, err
	}

	counters, err := db.ListCounters(database, project.ID)
	if err != nil {
		return nil, err
	}

	return &GetProjectOutput{Project: *project, Counters: counters}, nil
}

// ListProjectsInput contains parameters for the ListProjects operation.
type ListProjectsInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListProjectsOutput contains the result of the ListProjects operation.
type ListProjectsOutput struct {
	Items      []db.Project `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

// ListProjects retrieves projects ordered by most recently updated.
func ListProjects(database *sql.DB, input ListProjectsInput) (*ListProjectsOutput, error) {
	limit := clampLimit(input.Limit)
	offset := max(input.Offset, 0)

	projects, total, err := db.ListProjects(database, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListProjectsOutput{
		Items: projects,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(projects) < total,
			Total:   total,
		},
	}, nil
}

// UpdateProjectInput contains parameters for the UpdateProject operation.
type UpdateProjectInput struct {
	ID string // required

	// Editable fields (nil = don't change)
	Name      *string
	Craft     *string
	NotesMD   *string
	TotalRows *int
}

// UpdateProjectOutput contains the result of the UpdateProject operation.
type UpdateProjectOutput struct {
	Project db.Project `json:"project"`
}

// UpdateProject modifies an existing project.
func UpdateProject(database *sql.DB, input UpdateProjectInput) (*UpdateProjectOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Name == nil && input.Craft == nil && input.NotesMD == nil && input.TotalRows == nil {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	project, err := db.GetProject(database, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		nameNorm := Normalize(*input.Name)
		if nameNorm == "" {
			return nil, errors.NewInvalidRequest("name must not be empty")
		}
		project.NameRaw = *input.Name
		project.NameNorm = nameNorm
	}
	if input.Craft != nil {
		project.Craft = *input.Craft
	}
	if input.NotesMD != nil {
		project.NotesMD = input.NotesMD
	}
	if input.TotalRows != nil {
		if *input.TotalRows < 0 {
			return nil, errors.NewInvalidRequest("total_rows must not be negative")
		}
		project.TotalRows = *input.TotalRows
	}
	project.UpdatedAt = time.Now().Unix()

	if err := db.UpdateProject(database, project); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewNameAlreadyExists(project.NameRaw)
		}
		return nil, err
	}

	return &UpdateProjectOutput{Project: *project}, nil
}

// DeleteProjectInput contains parameters for the DeleteProject operation.
type DeleteProjectInput struct {
	ID string
}

// DeleteProjectOutput contains the result of the DeleteProject operation.
type DeleteProjectOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteProject hard-deletes a project; counters, markers, and events cascade.
func DeleteProject(database *sql.DB, input DeleteProjectInput) (*DeleteProjectOutput, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := db.DeleteProject(database, input.ID); err != nil {
		return nil, err
	}
	return &DeleteProjectOutput{Deleted: true, ID: input.ID}, nil
}
