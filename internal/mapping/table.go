package mapping

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/csg33k/txn-intake/internal/domain"
	"github.com/csg33k/txn-intake/internal/formpath"
)

//go:embed tables/*.yaml
var embedded embed.FS

// Schema names the external record type a table writes.
type Schema string

const (
	SchemaTransaction Schema = "transaction"
	SchemaClient      Schema = "client"
)

// shapes maps each schema to the form shape its source keys address.
var shapes = map[Schema]reflect.Type{
	SchemaTransaction: reflect.TypeOf(domain.TransactionFormState{}),
	SchemaClient:      reflect.TypeOf(domain.Client{}),
}

// FieldMapping routes one canonical source key to an opaque external field.
type FieldMapping struct {
	SourceKey       string        `yaml:"sourceKey" json:"sourceKey"`
	ExternalFieldID string        `yaml:"externalFieldId" json:"externalFieldId"`
	Transform       TransformKind `yaml:"transform,omitempty" json:"transform,omitempty"`
	// DefaultZero writes 0 instead of failing when an optional numeric
	// value does not parse.
	DefaultZero bool `yaml:"defaultZero,omitempty" json:"defaultZero,omitempty"`
}

// Table is one version of one external schema.
type Table struct {
	Name   string `yaml:"name" json:"name"`
	Schema Schema `yaml:"schema" json:"schema"`
	// ClientLinkFieldID, when set, is the transaction field that receives
	// the created client record IDs.
	ClientLinkFieldID string         `yaml:"clientLinkFieldId,omitempty" json:"clientLinkFieldId,omitempty"`
	Entries           []FieldMapping `yaml:"fields" json:"fields"`
}

// Validate checks every entry against the table's schema.
func (t Table) Validate() error {
	shape, ok := shapes[t.Schema]
	if !ok {
		return &domain.ConfigurationError{Table: t.name(), Reason: fmt.Sprintf("unknown schema %q", t.Schema)}
	}
	return t.validateShape(shape)
}

func (t Table) validateShape(shape reflect.Type) error {
	seen := make(map[string]string, len(t.Entries))
	for _, e := range t.Entries {
		if !formpath.Known(shape, e.SourceKey) {
			return &domain.ConfigurationError{Table: t.name(), Key: e.SourceKey, Reason: "unknown source key"}
		}
		if strings.TrimSpace(e.ExternalFieldID) == "" {
			return &domain.ConfigurationError{Table: t.name(), Key: e.SourceKey, Reason: "empty external field id"}
		}
		if prev, dup := seen[e.ExternalFieldID]; dup {
			return &domain.ConfigurationError{Table: t.name(), Key: e.SourceKey,
				Reason: fmt.Sprintf("external field %s already mapped from %s", e.ExternalFieldID, prev)}
		}
		seen[e.ExternalFieldID] = e.SourceKey
		if !e.Transform.Known() {
			return &domain.ConfigurationError{Table: t.name(), Key: e.SourceKey,
				Reason: fmt.Sprintf("unknown transform %q", e.Transform)}
		}
		if e.DefaultZero && !isNumeric(resolveTransform(e)) {
			return &domain.ConfigurationError{Table: t.name(), Key: e.SourceKey, Reason: "defaultZero on a non-numeric field"}
		}
	}
	if t.ClientLinkFieldID != "" {
		if t.Schema != SchemaTransaction {
			return &domain.ConfigurationError{Table: t.name(), Reason: "clientLinkFieldId on a non-transaction table"}
		}
		if src, dup := seen[t.ClientLinkFieldID]; dup {
			return &domain.ConfigurationError{Table: t.name(), Key: src, Reason: "client link field is also mapped"}
		}
	}
	return nil
}

func (t Table) name() string {
	if t.Name == "" {
		return "unnamed mapping table"
	}
	return t.Name
}

// LoadTable decodes and validates a YAML table. Unknown YAML keys are
// rejected so typos fail at load time.
func LoadTable(data []byte) (Table, error) {
	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Table{}, &domain.ConfigurationError{Table: "mapping table", Reason: err.Error()}
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Embedded loads one of the tables shipped with the binary by name, e.g.
// "transaction_v2" or "client".
func Embedded(name string) (Table, error) {
	data, err := embedded.ReadFile(path.Join("tables", name+".yaml"))
	if err != nil {
		return Table{}, &domain.ConfigurationError{Table: name, Reason: "no such embedded table"}
	}
	return LoadTable(data)
}

// MustEmbedded is Embedded for tables that are known to exist.
func MustEmbedded(name string) Table {
	t, err := Embedded(name)
	if err != nil {
		panic(err)
	}
	return t
}

// EmbeddedNames lists the shipped tables, sorted.
func EmbeddedNames() []string {
	entries, _ := embedded.ReadDir("tables")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// TransactionTable selects the transaction schema version. "v1" is the
// legacy brokerFeeAmount layout; "v2" (the default) carries the
// sellerPaid/buyerPaid fields.
func TransactionTable(version string) (Table, error) {
	switch version {
	case "", "v2":
		return Embedded("transaction_v2")
	case "v1":
		return Embedded("transaction_v1")
	}
	return Table{}, &domain.ConfigurationError{Table: "transaction", Reason: fmt.Sprintf("unknown schema version %q", version)}
}
