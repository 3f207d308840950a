package contacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Asami3315/Emergency-Ringer/internal/config"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

// Repository defines the contact store operations used by the daemon.
type Repository interface {
	List(ctx context.Context) ([]domain.TrustedContact, error)
	Add(ctx context.Context, contact domain.TrustedContact) (bool, error)
	Remove(ctx context.Context, contact domain.TrustedContact) (bool, error)
	MonitoringEnabled(ctx context.Context) (bool, error)
	SetMonitoringEnabled(ctx context.Context, enabled bool) error
}

const (
	// fieldContacts is the list of trusted contacts.
	fieldContacts = "contacts"
	// fieldMonitoring is the master monitoring toggle.
	fieldMonitoring = "monitoring_enabled"
	// fieldName is the contact display name.
	fieldName = "name"
	// fieldNumber is the contact phone number.
	fieldNumber = "number"
)

var (
	// ErrInvalidContact is returned for a contact without a name.
	ErrInvalidContact = domain.ErrInvalidContact
	// errMalformedFile is returned when the stored document has the wrong shape.
	errMalformedFile = errors.New("malformed contacts file")
)

// document is the decoded content of the contacts file.
type document struct {
	contacts   []domain.TrustedContact
	monitoring bool
}

// FileRepository persists contacts to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON file.
	path string
	// mu serializes read-modify-write cycles on the file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// List returns the trusted contacts in insertion order.
func (r *FileRepository) List(_ context.Context) ([]domain.TrustedContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	return doc.contacts, nil
}

// Add stores the contact unless the same name/number pair exists already.
// It reports whether the list changed.
func (r *FileRepository) Add(_ context.Context, contact domain.TrustedContact) (bool, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Number = strings.TrimSpace(contact.Number)

	if contact.Name == "" {
		return false, ErrInvalidContact
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return false, err
	}

	for _, existing := range doc.contacts {
		if existing.Equal(contact) {
			return false, nil
		}
	}

	doc.contacts = append(doc.contacts, contact)

	return true, r.save(doc)
}

// Remove deletes the contact with the same name/number pair.
// It reports whether the list changed.
func (r *FileRepository) Remove(_ context.Context, contact domain.TrustedContact) (bool, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Number = strings.TrimSpace(contact.Number)

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return false, err
	}

	kept := doc.contacts[:0]
	for _, existing := range doc.contacts {
		if !existing.Equal(contact) {
			kept = append(kept, existing)
		}
	}

	if len(kept) == len(doc.contacts) {
		return false, nil
	}

	doc.contacts = kept

	return true, r.save(doc)
}

// MonitoringEnabled returns the master toggle. Monitoring is on by default.
func (r *FileRepository) MonitoringEnabled(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return false, err
	}

	return doc.monitoring, nil
}

// SetMonitoringEnabled stores the master toggle.
func (r *FileRepository) SetMonitoringEnabled(_ context.Context, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}

	doc.monitoring = enabled

	return r.save(doc)
}

// load reads the document; a missing file yields the defaults.
func (r *FileRepository) load() (*document, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &document{monitoring: true}, nil
		}

		return nil, fmt.Errorf("read contacts file: %w", err)
	}

	var raw structpb.Struct
	if err = protojson.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("decode contacts file: %w", err)
	}

	return fromStruct(&raw)
}

// save writes the document to disk.
func (r *FileRepository) save(doc *document) error {
	raw, err := toStruct(doc)
	if err != nil {
		return fmt.Errorf("encode contacts: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode contacts: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write contacts file: %w", err)
	}

	return nil
}

// fromStruct converts the stored document into domain values.
func fromStruct(raw *structpb.Struct) (*document, error) {
	doc := &document{monitoring: true}

	fields := raw.GetFields()
	if v, ok := fields[fieldMonitoring]; ok {
		flag, isBool := v.GetKind().(*structpb.Value_BoolValue)
		if !isBool {
			return nil, fmt.Errorf("%w: %s is not a bool", errMalformedFile, fieldMonitoring)
		}

		doc.monitoring = flag.BoolValue
	}

	for _, item := range fields[fieldContacts].GetListValue().GetValues() {
		entry := item.GetStructValue()
		if entry == nil {
			return nil, fmt.Errorf("%w: contact is not an object", errMalformedFile)
		}

		doc.contacts = append(doc.contacts, domain.TrustedContact{
			Name:   entry.GetFields()[fieldName].GetStringValue(),
			Number: entry.GetFields()[fieldNumber].GetStringValue(),
		})
	}

	return doc, nil
}

// toStruct converts domain values into the stored document.
func toStruct(doc *document) (*structpb.Struct, error) {
	list := make([]any, 0, len(doc.contacts))
	for _, c := range doc.contacts {
		list = append(list, map[string]any{
			fieldName:   c.Name,
			fieldNumber: c.Number,
		})
	}

	return structpb.NewStruct(map[string]any{
		fieldMonitoring: doc.monitoring,
		fieldContacts:   list,
	})
}
