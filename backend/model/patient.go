package model

// Patient metadata keys. They double as multipart field names on the
// analysis request.
const (
	FieldName     = "name"
	FieldAge      = "age"
	FieldAddress  = "address"
	FieldDOB      = "dob"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldBodyPart = "bodyPart"
)

// PatientField describes one metadata field of the upload form
type PatientField struct {
	Key   string
	Label string
}

// PatientFields lists the metadata fields in form order
var PatientFields = []PatientField{
	{FieldName, "Name"},
	{FieldAge, "Age"},
	{FieldAddress, "Address"},
	{FieldDOB, "Date of Birth"},
	{FieldEmail, "Email"},
	{FieldPhone, "Phone"},
	{FieldBodyPart, "Body Part"},
}

// FieldLabel returns the display label of a metadata key, and false for
// unknown keys
func FieldLabel(key string) (string, bool) {
	for _, f := range PatientFields {
		if f.Key == key {
			return f.Label, true
		}
	}
	return "", false
}

// PatientMetadata holds the user-entered form fields keyed by field name
type PatientMetadata map[string]string

// NewPatientMetadata returns metadata with every known field present and empty
func NewPatientMetadata() PatientMetadata {
	m := make(PatientMetadata, len(PatientFields))
	for _, f := range PatientFields {
		m[f.Key] = ""
	}
	return m
}

// Clone returns an independent copy
func (m PatientMetadata) Clone() PatientMetadata {
	out := make(PatientMetadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Get returns the value of key, empty when unset
func (m PatientMetadata) Get(key string) string {
	return m[key]
}

// SelectedFile is the thermal image chosen by the user
type SelectedFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Size returns the payload length in bytes
func (f *SelectedFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// Clone returns a deep copy so an in-flight request never shares bytes
// with a later selection
func (f *SelectedFile) Clone() *SelectedFile {
	if f == nil {
		return nil
	}
	cp := *f
	cp.Data = append([]byte(nil), f.Data...)
	return &cp
}
