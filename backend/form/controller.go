// Package form holds the patient metadata and thermal image a user is
// preparing for analysis.
package form

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
	"sync"

	"github.com/thermalytics/thermoinsights/backend/model"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	MsgMissingFile      = "Please upload a thermal image."
	MsgUnsupportedImage = "The selected file is not a supported image."
)

// ErrUnknownField is returned when a caller sets a key outside the form
var ErrUnknownField = errors.New("unknown form field")

// ValidationError is a user-facing form problem. Field is the offending
// metadata key, or "file" for the image.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Controller owns the form state for one user. It has no network or
// rendering side effects.
type Controller struct {
	mu             sync.Mutex
	metadata       model.PatientMetadata
	file           *model.SelectedFile
	onFileSelected func()
}

// NewController creates a controller with every field empty and no file
func NewController() *Controller {
	return &Controller{metadata: model.NewPatientMetadata()}
}

// OnFileSelected registers fn to run after every file selection
func (c *Controller) OnFileSelected(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFileSelected = fn
}

// SetField updates one metadata field
func (c *Controller) SetField(key, value string) error {
	if _, ok := model.FieldLabel(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[key] = value
	return nil
}

// SetFields updates several fields at once. Nothing is applied if any key
// is unknown.
func (c *Controller) SetFields(values map[string]string) error {
	for key := range values {
		if _, ok := model.FieldLabel(key); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, value := range values {
		c.metadata[key] = value
	}
	return nil
}

// SelectFile replaces the selected image. The previous selection is
// dropped even when the new file is rejected.
func (c *Controller) SelectFile(filename string, data []byte) error {
	file, err := sniffImage(filename, data)

	c.mu.Lock()
	c.file = file
	notify := c.onFileSelected
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
	return err
}

// ClearFile drops the selected image without notifying listeners
func (c *Controller) ClearFile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = nil
}

func sniffImage(filename string, data []byte) (*model.SelectedFile, error) {
	if len(data) == 0 {
		return nil, &ValidationError{Field: "file", Message: MsgMissingFile}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: MsgUnsupportedImage}
	}

	if filename == "" {
		filename = "thermal." + format
	}

	return &model.SelectedFile{
		Filename:    filepath.Base(filename),
		ContentType: "image/" + format,
		Data:        append([]byte(nil), data...),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// Metadata returns a copy of the current fields
func (c *Controller) Metadata() model.PatientMetadata {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metadata.Clone()
}

// File returns a copy of the selected image, nil when none
func (c *Controller) File() *model.SelectedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Clone()
}

// Snapshot returns immutable copies of the fields and file for submission
func (c *Controller) Snapshot() (model.PatientMetadata, *model.SelectedFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metadata.Clone(), c.file.Clone()
}

// Validate checks the current form
func (c *Controller) Validate() error {
	meta, file := c.Snapshot()
	return Validate(meta, file)
}

// Validate requires every metadata field to be non-empty and a file to be
// present. Fields are checked in form order before the file.
func Validate(meta model.PatientMetadata, file *model.SelectedFile) error {
	for _, f := range model.PatientFields {
		if strings.TrimSpace(meta.Get(f.Key)) == "" {
			return &ValidationError{
				Field:   f.Key,
				Message: fmt.Sprintf("Please fill in %s.", f.Label),
			}
		}
	}
	if file == nil || len(file.Data) == 0 {
		return &ValidationError{Field: "file", Message: MsgMissingFile}
	}
	return nil
}
