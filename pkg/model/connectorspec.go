package model

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/validation"
)

const (
	DefaultDatabaseName = "edc"
	DefaultDatabaseUser = "user"
)

//ConnectorSpec is the operator supplied description of a connector deployment
type ConnectorSpec struct {
	Name     string                 `json:"name" yaml:"name" mapstructure:"name"`
	BPN      string                 `json:"bpn" yaml:"bpn" mapstructure:"bpn"`
	Version  string                 `json:"version" yaml:"version" mapstructure:"version"`
	URL      string                 `json:"url" yaml:"url" mapstructure:"url"`
	Registry *ServiceDescriptor     `json:"registry,omitempty" yaml:"registry,omitempty" mapstructure:"registry"`
	Submodel *ServiceDescriptor     `json:"submodel,omitempty" yaml:"submodel,omitempty" mapstructure:"submodel"`
	Database DatabaseCredentials    `json:"database" yaml:"database" mapstructure:"database"`
	Values   map[string]interface{} `json:"values,omitempty" yaml:"values,omitempty" mapstructure:"values"`
}

//ServiceDescriptor points to an optional dataspace service (registry or submodel server).
//Credentials is a reference (e.g. a secret name), never the secret itself.
type ServiceDescriptor struct {
	URL         string `json:"url" yaml:"url" mapstructure:"url"`
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty" mapstructure:"credentials"`
}

type DatabaseCredentials struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	User     string `json:"user,omitempty" yaml:"user,omitempty" mapstructure:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
}

//DeepCopy returns a copy which shares no pointers, maps or slices with s
func (s *ConnectorSpec) DeepCopy() *ConnectorSpec {
	if s == nil {
		return nil
	}
	out := *s
	if s.Registry != nil {
		registry := *s.Registry
		out.Registry = &registry
	}
	if s.Submodel != nil {
		submodel := *s.Submodel
		out.Submodel = &submodel
	}
	if s.Values != nil {
		out.Values = copyValue(s.Values).(map[string]interface{})
	}
	return &out
}

func copyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = copyValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

//RegistryDisabled is true if the registry is given without URL: an upgrade removes a stored registry then
func (s *ConnectorSpec) RegistryDisabled() bool {
	return s.Registry != nil && s.Registry.URL == ""
}

//SubmodelDisabled is true if the submodel server is given without URL
func (s *ConnectorSpec) SubmodelDisabled() bool {
	return s.Submodel != nil && s.Submodel.URL == ""
}

func (s *ConnectorSpec) RegistryEnabled() bool {
	return s.Registry != nil && s.Registry.URL != ""
}

func (s *ConnectorSpec) SubmodelEnabled() bool {
	return s.Submodel != nil && s.Submodel.URL != ""
}

func (s *ConnectorSpec) ApplyDefaults() {
	if s.Database.Name == "" {
		s.Database.Name = DefaultDatabaseName
	}
	if s.Database.User == "" {
		s.Database.User = DefaultDatabaseUser
	}
}

func (s *ConnectorSpec) Validate() error {
	var problems []string
	if msgs := validation.IsDNS1123Label(s.Name); len(msgs) > 0 {
		problems = append(problems, fmt.Sprintf("name '%s' is invalid: %s", s.Name, strings.Join(msgs, ", ")))
	}
	if strings.TrimSpace(s.BPN) == "" {
		problems = append(problems, "bpn is required")
	}
	if _, err := semver.NewVersion(s.Version); err != nil {
		problems = append(problems, fmt.Sprintf("version '%s' is not MAJOR.MINOR.PATCH", s.Version))
	}
	if err := validateURL(s.URL); err != nil {
		problems = append(problems, errors.Wrap(err, "url").Error())
	}
	if s.RegistryEnabled() {
		if err := validateURL(s.Registry.URL); err != nil {
			problems = append(problems, errors.Wrap(err, "registry url").Error())
		}
	}
	if s.SubmodelEnabled() {
		if err := validateURL(s.Submodel.URL); err != nil {
			problems = append(problems, errors.Wrap(err, "submodel url").Error())
		}
	}
	if len(problems) > 0 {
		return &InvalidSpecError{Problems: problems}
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("'%s' is not an absolute URL", raw)
	}
	return nil
}

type InvalidSpecError struct {
	Problems []string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid connector spec: %s", strings.Join(e.Problems, "; "))
}

func IsInvalidSpecError(err error) bool {
	var specErr *InvalidSpecError
	return errors.As(err, &specErr)
}
