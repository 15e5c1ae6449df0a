package identity

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/dataspace-ops/emc/pkg/model"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/validation"
)

//TrustConfig describes the dataspace the connectors join
type TrustConfig struct {
	WalletURL      string `mapstructure:"walletUrl"`
	TrustAuthority string `mapstructure:"trustAuthority"`
	StsDimURL      string `mapstructure:"stsDimUrl"`
	StsTokenURL    string `mapstructure:"stsTokenUrl"`
	BdrsURL        string `mapstructure:"bdrsUrl"`
	//SecretAliasPattern is formatted with the BPN, e.g. "%s-sts-secret"
	SecretAliasPattern string `mapstructure:"secretAliasPattern"`
	//IngressDomain is appended to the per-connector hostnames. Falls back to the host of the connector URL.
	IngressDomain string `mapstructure:"ingressDomain"`
}

const defaultSecretAliasPattern = "%s-sts-client-secret"

//Identity holds the values derived from a connector spec and the dataspace trust configuration
type Identity struct {
	DID              string `json:"did"`
	TrustedIssuer    string `json:"trustedIssuer"`
	StsDimURL        string `json:"stsDimUrl"`
	StsTokenURL      string `json:"stsTokenUrl"`
	ClientID         string `json:"clientId"`
	SecretAlias      string `json:"secretAlias"`
	BdrsURL          string `json:"bdrsUrl"`
	ControlPlaneHost string `json:"controlPlaneHost"`
	DataPlaneHost    string `json:"dataPlaneHost"`
}

type Deriver struct {
	trust TrustConfig
}

func NewDeriver(trust TrustConfig) (*Deriver, error) {
	var missing []string
	for key, value := range map[string]string{
		"walletUrl":      trust.WalletURL,
		"trustAuthority": trust.TrustAuthority,
		"stsDimUrl":      trust.StsDimURL,
		"stsTokenUrl":    trust.StsTokenURL,
		"bdrsUrl":        trust.BdrsURL,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("dataspace trust configuration incomplete, missing: %s", strings.Join(missing, ", "))
	}
	if _, err := walletHost(trust.WalletURL); err != nil {
		return nil, err
	}
	if trust.SecretAliasPattern == "" {
		trust.SecretAliasPattern = defaultSecretAliasPattern
	}
	return &Deriver{trust: trust}, nil
}

//Derive is deterministic: the same spec always yields the same identity
func (d *Deriver) Derive(spec *model.ConnectorSpec) (*Identity, error) {
	if spec.Name == "" || spec.BPN == "" {
		return nil, errors.New("connector name and BPN are required to derive an identity")
	}
	host, err := walletHost(d.trust.WalletURL)
	if err != nil {
		return nil, err
	}
	domain := d.trust.IngressDomain
	if domain == "" {
		connectorURL, err := url.Parse(spec.URL)
		if err != nil || connectorURL.Hostname() == "" {
			return nil, fmt.Errorf("cannot determine ingress domain from connector URL '%s'", spec.URL)
		}
		domain = connectorURL.Hostname()
	}

	id := &Identity{
		DID:              fmt.Sprintf("did:web:%s:%s", host, url.PathEscape(spec.BPN)),
		TrustedIssuer:    d.trust.TrustAuthority,
		StsDimURL:        d.trust.StsDimURL,
		StsTokenURL:      d.trust.StsTokenURL,
		ClientID:         spec.BPN,
		SecretAlias:      fmt.Sprintf(d.trust.SecretAliasPattern, spec.BPN),
		BdrsURL:          d.trust.BdrsURL,
		ControlPlaneHost: fmt.Sprintf("%s-controlplane.%s", spec.Name, domain),
		DataPlaneHost:    fmt.Sprintf("%s-dataplane.%s", spec.Name, domain),
	}
	for _, hostname := range []string{id.ControlPlaneHost, id.DataPlaneHost} {
		if msgs := validation.IsDNS1123Subdomain(hostname); len(msgs) > 0 {
			return nil, fmt.Errorf("derived hostname '%s' is invalid: %s", hostname, strings.Join(msgs, ", "))
		}
	}
	return id, nil
}

//Missing lists the identity fields a manifest cannot be rendered without
func (id *Identity) Missing() []string {
	var missing []string
	check := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}
	check("did", id.DID)
	check("trustedIssuer", id.TrustedIssuer)
	check("stsDimUrl", id.StsDimURL)
	check("stsTokenUrl", id.StsTokenURL)
	check("clientId", id.ClientID)
	check("secretAlias", id.SecretAlias)
	check("bdrsUrl", id.BdrsURL)
	check("controlPlaneHost", id.ControlPlaneHost)
	check("dataPlaneHost", id.DataPlaneHost)
	return missing
}

func walletHost(walletURL string) (string, error) {
	u, err := url.Parse(walletURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("wallet URL '%s' is not an absolute URL", walletURL)
	}
	//did:web encodes ports with %3A
	return strings.ReplaceAll(u.Host, ":", "%3A"), nil
}
