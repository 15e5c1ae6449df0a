package manifest

import (
	"bytes"
	"embed"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/dataspace-ops/emc/pkg/files"
	"github.com/dataspace-ops/emc/pkg/identity"
	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"helm.sh/helm/v3/pkg/chartutil"
	k8syaml "sigs.k8s.io/yaml"
)

//go:embed templates/*.yaml
var templates embed.FS

type Config struct {
	//WorkDir receives the rendered manifests. It defaults to the chart directory.
	WorkDir string `mapstructure:"workDir"`
	//TemplateDir overrides the embedded base templates (same file names)
	TemplateDir string `mapstructure:"templateDir"`
}

//Flags toggles the optional sub-charts
type Flags struct {
	Registry bool
	Submodel bool
}

func FlagsFor(spec *model.ConnectorSpec) Flags {
	return Flags{
		Registry: spec.RegistryEnabled(),
		Submodel: spec.SubmodelEnabled(),
	}
}

type Renderer struct {
	workDir     string
	templateDir string
	logger      *zap.SugaredLogger
}

func NewRenderer(cfg Config, logger *zap.SugaredLogger) (*Renderer, error) {
	if cfg.WorkDir == "" {
		return nil, errors.New("manifest working directory is undefined")
	}
	if !file.DirExists(cfg.WorkDir) {
		return nil, fmt.Errorf("manifest working directory '%s' does not exist", cfg.WorkDir)
	}
	if cfg.TemplateDir != "" && !file.DirExists(cfg.TemplateDir) {
		return nil, fmt.Errorf("template directory '%s' does not exist", cfg.TemplateDir)
	}
	workDir, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve manifest working directory '%s'", cfg.WorkDir)
	}
	return &Renderer{
		workDir:     workDir,
		templateDir: cfg.TemplateDir,
		logger:      logger,
	}, nil
}

func (r *Renderer) WorkDir() string {
	return r.workDir
}

//Path returns the absolute path of a rendered manifest. The deployment tool runs in the chart directory
//which is not necessarily the working directory.
func (r *Renderer) Path(fileName string) string {
	return filepath.Join(r.workDir, fileName)
}

//FileName returns the manifest file name used for a connector and generation
func FileName(name string, gen Generation) string {
	return fmt.Sprintf("%s_values_%s.yaml", name, gen)
}

//Render writes the manifest of a connector into the working directory and returns its file name
func (r *Renderer) Render(spec *model.ConnectorSpec, id *identity.Identity, flags Flags) (string, error) {
	data, gen, err := r.Marshal(spec, id, flags)
	if err != nil {
		return "", err
	}
	fileName := FileName(spec.Name, gen)
	if err := file.WriteAtomic(r.Path(fileName), data, 0600); err != nil {
		return "", errors.Wrapf(err, "failed to write manifest of connector '%s'", spec.Name)
	}
	r.logger.Debugf("Rendered manifest '%s' for connector '%s' (generation %s)", fileName, spec.Name, gen)
	return fileName, nil
}

//Remove deletes a previously rendered manifest. Missing files are ignored.
func (r *Renderer) Remove(fileName string) error {
	return file.RemoveIfExists(r.Path(fileName))
}

//Marshal renders the manifest without writing it
func (r *Renderer) Marshal(spec *model.ConnectorSpec, id *identity.Identity, flags Flags) ([]byte, Generation, error) {
	values, gen, err := r.Values(spec, id, flags)
	if err != nil {
		return nil, 0, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]interface{}(values)); err != nil {
		return nil, 0, errors.Wrap(err, "failed to encode manifest")
	}
	if err := enc.Close(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), gen, nil
}

func (r *Renderer) Values(spec *model.ConnectorSpec, id *identity.Identity, flags Flags) (chartutil.Values, Generation, error) {
	if err := chartutil.ValidateReleaseName(spec.Name); err != nil {
		return nil, 0, errors.Wrapf(err, "connector name '%s' cannot be used as release name", spec.Name)
	}
	if id == nil {
		return nil, 0, &InvalidIdentityError{Missing: (&identity.Identity{}).Missing()}
	}
	if missing := id.Missing(); len(missing) > 0 {
		return nil, 0, &InvalidIdentityError{Missing: missing}
	}
	gen, err := GenerationForVersion(spec.Version)
	if err != nil {
		return nil, 0, err
	}
	values, err := r.load(gen)
	if err != nil {
		return nil, 0, err
	}
	if len(spec.Values) > 0 {
		extra, err := copyValues(spec.Values)
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to merge additional values")
		}
		//additional values win over the template, derived values win over both
		values = chartutil.CoalesceTables(extra, values)
	}

	db := spec.Database
	if db.Name == "" || db.User == "" {
		specCopy := *spec
		specCopy.ApplyDefaults()
		db = specCopy.Database
	}

	table(values, "participant")["id"] = url.QueryEscape(spec.BPN)

	iatp := table(values, "iatp")
	iatp["id"] = id.DID
	setFirst(iatp, "trustedIssuers", id.TrustedIssuer)
	table(iatp, "sts", "dim")["url"] = id.StsDimURL
	oauth := table(iatp, "sts", "oauth")
	oauth["token_url"] = id.StsTokenURL
	client := table(oauth, "client")
	client["id"] = id.ClientID
	client["secret_alias"] = id.SecretAlias

	controlplane := table(values, "controlplane")
	table(controlplane, "bdrs", "server")["url"] = id.BdrsURL
	firstTable(controlplane, "ingresses")["hostname"] = id.ControlPlaneHost
	firstTable(table(values, "dataplane"), "ingresses")["hostname"] = id.DataPlaneHost

	auth := table(values, "postgresql", "auth")
	auth["database"] = db.Name
	auth["username"] = db.User
	auth["password"] = db.Password

	tls := layouts[gen].tls

	registry := table(values, "digital-twin-registry")
	registry["enabled"] = flags.Registry && spec.RegistryEnabled()
	if flags.Registry && spec.RegistryEnabled() {
		host, err := hostOf(spec.Registry.URL)
		if err != nil {
			return nil, 0, errors.Wrap(err, "registry")
		}
		registryChart := table(registry, "registry")
		registryChart["host"] = host
		setIngress(table(registryChart, "ingress"), host, tls)
	}

	submodel := table(values, "submodel-server")
	submodel["enabled"] = flags.Submodel && spec.SubmodelEnabled()
	if flags.Submodel && spec.SubmodelEnabled() {
		host, err := hostOf(spec.Submodel.URL)
		if err != nil {
			return nil, 0, errors.Wrap(err, "submodel")
		}
		setIngress(table(submodel, "ingress"), host, tls)
	}

	return values, gen, nil
}

func (r *Renderer) load(gen Generation) (chartutil.Values, error) {
	name := layouts[gen].template
	if r.templateDir != "" {
		path := filepath.Join(r.templateDir, name)
		if file.Exists(path) {
			values, err := chartutil.ReadValuesFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read template '%s'", path)
			}
			return values, nil
		}
		r.logger.Debugf("Template '%s' not found in '%s': using embedded template", name, r.templateDir)
	}
	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read embedded template '%s'", name)
	}
	values, err := chartutil.ReadValues(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse embedded template '%s'", name)
	}
	return values, nil
}

//copyValues deep copies user supplied values so coalescing never mutates the spec
func copyValues(values map[string]interface{}) (chartutil.Values, error) {
	data, err := k8syaml.Marshal(values)
	if err != nil {
		return nil, err
	}
	return chartutil.ReadValues(data)
}

func setIngress(ingress map[string]interface{}, host string, tls tlsLayout) {
	ingress["enabled"] = true
	switch tls {
	case tlsHostList:
		firstTable(ingress, "hosts")["host"] = host
		setFirst(firstTable(ingress, "tls"), "hosts", host)
	case tlsHostname:
		ingress["hostname"] = host
		table(ingress, "tls")["enabled"] = true
	}
}

func hostOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("'%s' has no host", raw)
	}
	return u.Hostname(), nil
}

//table returns the nested map at keys and creates missing or non-map levels
func table(values map[string]interface{}, keys ...string) map[string]interface{} {
	current := values
	for _, key := range keys {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			if nextValues, isValues := current[key].(chartutil.Values); isValues {
				next = nextValues
			} else {
				next = map[string]interface{}{}
			}
			current[key] = next
		}
		current = next
	}
	return current
}

//firstTable returns the first element of the list at key as map
func firstTable(values map[string]interface{}, key string) map[string]interface{} {
	list, _ := values[key].([]interface{})
	if len(list) > 0 {
		if first, ok := list[0].(map[string]interface{}); ok {
			return first
		}
	}
	first := map[string]interface{}{}
	if len(list) == 0 {
		list = []interface{}{first}
	} else {
		list[0] = first
	}
	values[key] = list
	return first
}

func setFirst(values map[string]interface{}, key string, value interface{}) {
	list, _ := values[key].([]interface{})
	if len(list) == 0 {
		values[key] = []interface{}{value}
		return
	}
	list[0] = value
}
