package directory

import (
	"sync"

	"dining-service/internal/apperrors"
	"dining-service/internal/models"
)

// Directory is the student registry the reservation core consults for the
// is-active predicate. Authentication itself lives outside this service.
type Directory struct {
	mu       sync.RWMutex
	students map[int64]*models.Student
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{students: make(map[int64]*models.Student)}
}

// Register adds or replaces a student entry
func (d *Directory) Register(student models.Student) {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := student
	d.students[stored.ID] = &stored
}

// Get retrieves a student by id
func (d *Directory) Get(id int64) (models.Student, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	student, ok := d.students[id]
	if !ok {
		return models.Student{}, apperrors.ErrUnknownStudent
	}
	return *student, nil
}

// IsActive reports whether the student exists and is active
func (d *Directory) IsActive(id int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	student, ok := d.students[id]
	return ok && student.Active
}

// SetActive activates or deactivates a student
func (d *Directory) SetActive(id int64, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	student, ok := d.students[id]
	if !ok {
		return apperrors.ErrUnknownStudent
	}
	student.Active = active
	return nil
}
